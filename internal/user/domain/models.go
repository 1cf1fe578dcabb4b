package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleManager    = "MANAGER"
	RoleAgent      = "AGENT"
	RoleSecretary  = "SECRETARY"
)

// ValidRole reports whether the role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleAgent, RoleSecretary:
		return true
	default:
		return false
	}
}

type User struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"not null" json:"-"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Phone        string        `json:"phone,omitempty"`
	Avatar       string        `json:"avatar,omitempty"`
	Role         string        `gorm:"not null;index" json:"role"`
	AgencyID     *snowflake.ID `gorm:"index" json:"agency_id,omitempty"`
	IsActive     bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

var (
	ErrNotFound     = errors.New("user_not_found")
	ErrEmailExists  = errors.New("email_exists")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidRole  = errors.New("invalid_role")
)
