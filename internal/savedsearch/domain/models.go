package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type SavedSearch struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"not null" json:"name"`
	Filters   datatypes.JSONMap `gorm:"type:jsonb;not null" json:"filters"`
	IsActive  bool              `gorm:"not null;default:true" json:"is_active"`
	UserID    snowflake.ID      `gorm:"not null;index" json:"user_id"`
	AgencyID  snowflake.ID      `gorm:"not null;index" json:"agency_id"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

var (
	ErrNotFound    = errors.New("saved_search_not_found")
	ErrInvalidName = errors.New("invalid_name")
)
