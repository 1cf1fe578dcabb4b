package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeSale   = "SALE"
	TypeRental = "RENTAL"
)

const (
	StatusDraft     = "DRAFT"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

type Contract struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ContractNumber string       `gorm:"not null;index" json:"contract_number"`
	Type           string       `gorm:"not null" json:"type"`
	Status         string       `gorm:"not null;default:DRAFT;index" json:"status"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	SignedDate     *time.Time   `gorm:"index" json:"signed_date,omitempty"`
	Price          float64      `gorm:"not null" json:"price"`
	Commission     float64      `json:"commission"`
	CommissionRate float64      `json:"commission_rate"`
	Notes          string       `json:"notes,omitempty"`
	UserID         snowflake.ID `gorm:"not null;index" json:"user_id"`
	PropertyID     snowflake.ID `gorm:"not null;index" json:"property_id"`
	ClientID       snowflake.ID `gorm:"not null;index" json:"client_id"`
	AgencyID       snowflake.ID `gorm:"not null;index" json:"agency_id"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidType(value string) bool {
	return value == TypeSale || value == TypeRental
}

func ValidStatus(value string) bool {
	switch value {
	case StatusDraft, StatusActive, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound      = errors.New("contract_not_found")
	ErrInvalidType   = errors.New("invalid_type")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidPrice  = errors.New("invalid_price")
)
