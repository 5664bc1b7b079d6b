package models

import (
	"time"

	"gorm.io/gorm"
)

// Auth method constants
const (
	AuthMethodLocal  = "local"
	AuthMethodGoogle = "google"
)

// User represents an account, either local (username + password hash) or
// federated (Google identity established at first OAuth callback).
type User struct {
	gorm.Model
	// Unique among local accounts only: federated accounts store a display
	// name, and two Google users may share one.
	Username     string `gorm:"uniqueIndex:idx_users_username_local,where:auth_method = 'local' AND deleted_at IS NULL;not null"`
	PasswordHash string `gorm:"type:text"` // empty for federated accounts
	AuthMethod   string `gorm:"not null;default:'local'"`
	GoogleID     string `gorm:"index"` // set only for federated accounts
	Email        string
	LastLoginAt  *time.Time

	// Associations
	Ideas []Idea `gorm:"constraint:OnDelete:CASCADE;"`
}

// IsFederated reports whether the account was established via OAuth.
func (u *User) IsFederated() bool {
	return u.AuthMethod == AuthMethodGoogle
}
