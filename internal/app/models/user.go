package models

import "time"

// User defines the account model based on the 'users' table. Users live in the
// primary database; the profile row (candidate or supervisor) lives in the
// institute's own database, linked through ProfileID.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"user@hospital.org"`
	Password    string     `json:"-" db:"password"` // bcrypt hash, excluded from JSON
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	Role        Role       `json:"role" db:"role" example:"candidate"`
	Institute   string     `json:"institute" db:"institute" example:"st-marys"`
	ProfileID   *int64     `json:"profileId,omitempty" db:"profile_id"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
