package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusOverdue   = "OVERDUE"
	StatusCancelled = "CANCELLED"
)

type Payment struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	PaymentNumber string        `gorm:"not null;index" json:"payment_number"`
	Amount        float64       `gorm:"not null" json:"amount"`
	Type          string        `json:"type,omitempty"`
	Status        string        `gorm:"not null;default:PENDING;index" json:"status"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	PaidDate      *time.Time    `json:"paid_date,omitempty"`
	Method        string        `json:"method,omitempty"`
	Reference     string        `json:"reference,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	UserID        snowflake.ID  `gorm:"not null;index" json:"user_id"`
	ContractID    *snowflake.ID `gorm:"index" json:"contract_id,omitempty"`
	ClientID      *snowflake.ID `gorm:"index" json:"client_id,omitempty"`
	AgencyID      snowflake.ID  `gorm:"not null;index" json:"agency_id"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidStatus(value string) bool {
	switch value {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound      = errors.New("payment_not_found")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidAmount = errors.New("invalid_amount")
)
