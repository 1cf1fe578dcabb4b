package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type Task struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	Status      string        `gorm:"not null;default:PENDING;index" json:"status"`
	Priority    string        `gorm:"not null;default:MEDIUM;index" json:"priority"`
	DueDate     *time.Time    `gorm:"index" json:"due_date,omitempty"`
	UserID      snowflake.ID  `gorm:"not null;index" json:"user_id"`
	ClientID    *snowflake.ID `gorm:"index" json:"client_id,omitempty"`
	PropertyID  *snowflake.ID `gorm:"index" json:"property_id,omitempty"`
	ContractID  *snowflake.ID `gorm:"index" json:"contract_id,omitempty"`
	AgencyID    snowflake.ID  `gorm:"not null;index" json:"agency_id"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidStatus(value string) bool {
	switch value {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func ValidPriority(value string) bool {
	switch value {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound        = errors.New("task_not_found")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidPriority = errors.New("invalid_priority")
)
