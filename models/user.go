// Package models contains the database models for the application
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of an authenticated user
type UserRole string

const (
	// RoleGuest is the unauthenticated default; it is never persisted
	RoleGuest UserRole = "guest"
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// String returns the string representation of the role
func (r UserRole) String() string {
	return string(r)
}

// Valid checks if the role is a persistable role (guest is not stored)
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for UserRole
func (r *UserRole) Scan(value any) error {
	if value == nil {
		*r = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*r = UserRole(v)
	case []byte:
		*r = UserRole(string(v))
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for UserRole
func (r UserRole) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid UserRole: %s", r)
	}
	return string(r), nil
}

// User represents a registered account
// Table: users
// Unique by username and email; role defaults to 'user'
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Username     string     `gorm:"size:150;not null;uniqueIndex:uk_users_username" json:"username"`
	Email        string     `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null;default:'user';index:idx_users_role" json:"role"`
	IsActive     *bool      `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_users_created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	Username      *string
	Email         *string
	Role          *UserRole
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
