package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

type Appointment struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	StartDate   time.Time     `gorm:"not null;index" json:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	Location    string        `json:"location,omitempty"`
	Status      string        `gorm:"not null;default:SCHEDULED;index" json:"status"`
	UserID      snowflake.ID  `gorm:"not null;index" json:"user_id"`
	ClientID    *snowflake.ID `gorm:"index" json:"client_id,omitempty"`
	PropertyID  *snowflake.ID `gorm:"index" json:"property_id,omitempty"`
	AgencyID    snowflake.ID  `gorm:"not null;index" json:"agency_id"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidStatus(value string) bool {
	switch value {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound      = errors.New("appointment_not_found")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidDates  = errors.New("invalid_dates")
)
