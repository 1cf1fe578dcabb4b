package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeBuyer    = "BUYER"
	TypeSeller   = "SELLER"
	TypeTenant   = "TENANT"
	TypeLandlord = "LANDLORD"
	TypeProspect = "PROSPECT"
)

type Client struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	FirstName  string        `gorm:"not null" json:"first_name"`
	LastName   string        `gorm:"not null" json:"last_name"`
	Email      string        `json:"email,omitempty"`
	Phone      string        `json:"phone,omitempty"`
	Address    string        `json:"address,omitempty"`
	City       string        `json:"city,omitempty"`
	PostalCode string        `json:"postal_code,omitempty"`
	Country    string        `json:"country,omitempty"`
	ClientType string        `gorm:"not null;default:PROSPECT;index" json:"client_type"`
	Notes      string        `json:"notes,omitempty"`
	UserID     snowflake.ID  `gorm:"not null;index" json:"user_id"`
	AgencyID   snowflake.ID  `gorm:"not null;index" json:"agency_id"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidClientType(value string) bool {
	switch value {
	case TypeBuyer, TypeSeller, TypeTenant, TypeLandlord, TypeProspect:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound    = errors.New("client_not_found")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidType = errors.New("invalid_client_type")
	ErrInvalidID   = errors.New("invalid_id")
)
