package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeEmail  = "EMAIL"
	TypeSMS    = "SMS"
	TypeCall   = "CALL"
	TypeLetter = "LETTER"
)

const (
	StatusSent      = "SENT"
	StatusDelivered = "DELIVERED"
	StatusRead      = "READ"
	StatusFailed    = "FAILED"
)

type Communication struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	Type       string        `gorm:"not null;index" json:"type"`
	Subject    string        `json:"subject,omitempty"`
	Content    string        `json:"content,omitempty"`
	Recipient  string        `json:"recipient,omitempty"`
	Status     string        `gorm:"not null;default:SENT;index" json:"status"`
	SentAt     time.Time     `gorm:"not null;index" json:"sent_at"`
	UserID     snowflake.ID  `gorm:"not null;index" json:"user_id"`
	ClientID   *snowflake.ID `gorm:"index" json:"client_id,omitempty"`
	PropertyID *snowflake.ID `gorm:"index" json:"property_id,omitempty"`
	AgencyID   snowflake.ID  `gorm:"not null;index" json:"agency_id"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidType(value string) bool {
	switch value {
	case TypeEmail, TypeSMS, TypeCall, TypeLetter:
		return true
	default:
		return false
	}
}

func ValidStatus(value string) bool {
	switch value {
	case StatusSent, StatusDelivered, StatusRead, StatusFailed:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound      = errors.New("communication_not_found")
	ErrInvalidType   = errors.New("invalid_type")
	ErrInvalidStatus = errors.New("invalid_status")
)
