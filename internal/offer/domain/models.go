package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending      = "PENDING"
	StatusAccepted     = "ACCEPTED"
	StatusRejected     = "REJECTED"
	StatusCounterOffer = "COUNTER_OFFER"
	StatusWithdrawn    = "WITHDRAWN"
)

type Offer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OfferNumber string       `gorm:"not null;index" json:"offer_number"`
	Amount      float64      `gorm:"not null" json:"amount"`
	Status      string       `gorm:"not null;default:PENDING;index" json:"status"`
	Conditions  string       `json:"conditions,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	UserID      snowflake.ID `gorm:"not null;index" json:"user_id"`
	PropertyID  snowflake.ID `gorm:"not null;index" json:"property_id"`
	ClientID    snowflake.ID `gorm:"not null;index" json:"client_id"`
	AgencyID    snowflake.ID `gorm:"not null;index" json:"agency_id"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidStatus(value string) bool {
	switch value {
	case StatusPending, StatusAccepted, StatusRejected, StatusCounterOffer, StatusWithdrawn:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound      = errors.New("offer_not_found")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidAmount = errors.New("invalid_amount")
)
