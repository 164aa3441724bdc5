// Package auth carries the caller identity resolved from the bearer
// credential. Services trust this context as given and perform only the
// domain authorization checks (reviewer-of-record, admin role).
package auth

import "github.com/surgitrack/surgitrack/internal/app/models"

// Context identifies the authenticated caller for one request.
type Context struct {
	UserID    int64       // account id in the primary database
	ProfileID int64       // candidate or supervisor id in the tenant store, 0 when the role has no profile
	Role      models.Role // caller role
	Institute string      // tenant code
}

// IsAdmin reports whether the caller holds an administrative role.
func (c Context) IsAdmin() bool {
	return c.Role.IsAdmin()
}
