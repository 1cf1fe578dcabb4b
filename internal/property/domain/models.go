package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeApartment  = "APARTMENT"
	TypeHouse      = "HOUSE"
	TypeLand       = "LAND"
	TypeCommercial = "COMMERCIAL"
	TypeOffice     = "OFFICE"
	TypeVilla      = "VILLA"
	TypeStudio     = "STUDIO"
)

const (
	StatusAvailable = "AVAILABLE"
	StatusSold      = "SOLD"
	StatusRented    = "RENTED"
	StatusPending   = "PENDING"
	StatusWithdrawn = "WITHDRAWN"
)

type Property struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Reference   string        `gorm:"not null;index" json:"reference"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	Type        string        `gorm:"not null;index" json:"type"`
	Status      string        `gorm:"not null;default:AVAILABLE;index" json:"status"`
	Address     string        `json:"address,omitempty"`
	City        string        `json:"city,omitempty"`
	PostalCode  string        `json:"postal_code,omitempty"`
	Country     string        `json:"country,omitempty"`
	Price       float64       `gorm:"not null" json:"price"`
	Surface     float64       `json:"surface,omitempty"`
	Rooms       int           `json:"rooms,omitempty"`
	Bedrooms    int           `json:"bedrooms,omitempty"`
	Bathrooms   int           `json:"bathrooms,omitempty"`
	Floor       int           `json:"floor,omitempty"`
	HasElevator bool          `json:"has_elevator"`
	HasParking  bool          `json:"has_parking"`
	HasBalcony  bool          `json:"has_balcony"`
	HasGarden   bool          `json:"has_garden"`
	YearBuilt   int           `json:"year_built,omitempty"`
	EnergyClass string        `json:"energy_class,omitempty"`
	UserID      snowflake.ID  `gorm:"not null;index" json:"user_id"`
	ClientID    *snowflake.ID `gorm:"index" json:"client_id,omitempty"`
	AgencyID    snowflake.ID  `gorm:"not null;index" json:"agency_id"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Photos []PropertyPhoto `gorm:"foreignKey:PropertyID" json:"photos,omitempty"`
}

type PropertyPhoto struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	PropertyID snowflake.ID `gorm:"not null;index" json:"property_id"`
	URL        string       `gorm:"not null" json:"url"`
	Filename   string       `gorm:"not null" json:"filename"`
	IsMain     bool         `gorm:"not null;default:false" json:"is_main"`
	SortOrder  int          `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func ValidType(value string) bool {
	switch value {
	case TypeApartment, TypeHouse, TypeLand, TypeCommercial, TypeOffice, TypeVilla, TypeStudio:
		return true
	default:
		return false
	}
}

func ValidStatus(value string) bool {
	switch value {
	case StatusAvailable, StatusSold, StatusRented, StatusPending, StatusWithdrawn:
		return true
	default:
		return false
	}
}
