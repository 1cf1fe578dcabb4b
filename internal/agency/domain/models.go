package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Agency struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code       string            `gorm:"uniqueIndex;not null" json:"code"`
	Name       string            `gorm:"not null" json:"name"`
	Address    string            `json:"address,omitempty"`
	City       string            `json:"city,omitempty"`
	PostalCode string            `json:"postal_code,omitempty"`
	Country    string            `json:"country,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Email      string            `json:"email,omitempty"`
	Website    string            `json:"website,omitempty"`
	Siret      string            `json:"siret,omitempty"`
	IsActive   bool              `gorm:"not null;default:true" json:"is_active"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
