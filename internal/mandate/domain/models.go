package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeSimple    = "SIMPLE"
	TypeExclusive = "EXCLUSIVE"
	TypeSemi      = "SEMI_EXCLUSIVE"
)

const (
	StatusActive    = "ACTIVE"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

type Mandate struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	MandateNumber  string       `gorm:"not null;index" json:"mandate_number"`
	Type           string       `gorm:"not null" json:"type"`
	Status         string       `gorm:"not null;default:ACTIVE;index" json:"status"`
	StartDate      time.Time    `gorm:"not null" json:"start_date"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	Price          float64      `gorm:"not null" json:"price"`
	CommissionRate float64      `json:"commission_rate"`
	Notes          string       `json:"notes,omitempty"`
	UserID         snowflake.ID `gorm:"not null;index" json:"user_id"`
	PropertyID     snowflake.ID `gorm:"not null;index" json:"property_id"`
	ClientID       snowflake.ID `gorm:"not null;index" json:"client_id"`
	AgencyID       snowflake.ID `gorm:"not null;index" json:"agency_id"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidStatus(value string) bool {
	switch value {
	case StatusActive, StatusExpired, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound      = errors.New("mandate_not_found")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidPrice  = errors.New("invalid_price")
)
