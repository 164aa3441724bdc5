// Package services implements the domain workflows: submission review,
// clinical submission review and event attendance scoring. Services resolve
// the caller's tenant store per call, enforce invariants, and dispatch
// notifications strictly after the state-changing write commits.
package services

import (
	"context"

	"github.com/surgitrack/surgitrack/internal/tenant"
)

// StoreResolver resolves an institute code to its tenant store. Implemented
// by tenant.Registry; tests substitute a fixed store of fakes.
type StoreResolver interface {
	Store(ctx context.Context, institute string) (*tenant.Store, error)
}
