package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
)

type ListPropertyRequest struct {
	pagination.Pagination
	Status   string
	Type     string
	City     string
	Search   string
	MinPrice *float64
	MaxPrice *float64
}

type ListPropertyResponse struct {
	Items      []Property          `json:"items"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type CreatePropertyRequest struct {
	Title       string
	Description string
	Type        string
	Status      string
	Address     string
	City        string
	PostalCode  string
	Country     string
	Price       float64
	Surface     float64
	Rooms       int
	Bedrooms    int
	Bathrooms   int
	Floor       int
	HasElevator bool
	HasParking  bool
	HasBalcony  bool
	HasGarden   bool
	YearBuilt   int
	EnergyClass string
	ClientID    *snowflake.ID
}

type UpdatePropertyRequest struct {
	ID          string
	Title       *string
	Description *string
	Type        *string
	Status      *string
	Address     *string
	City        *string
	PostalCode  *string
	Country     *string
	Price       *float64
	Surface     *float64
	Rooms       *int
	Bedrooms    *int
	Bathrooms   *int
	Floor       *int
	HasElevator *bool
	HasParking  *bool
	HasBalcony  *bool
	HasGarden   *bool
	YearBuilt   *int
	EnergyClass *string
	ClientID    *snowflake.ID
}

type AddPhotoRequest struct {
	PropertyID string
	URL        string
	Filename   string
	IsMain     bool
}

type Service interface {
	Create(ctx context.Context, identity tenant.Identity, req CreatePropertyRequest) (*Property, error)
	List(ctx context.Context, identity tenant.Identity, req ListPropertyRequest) (*ListPropertyResponse, error)
	GetByID(ctx context.Context, identity tenant.Identity, id string) (*Property, error)
	Update(ctx context.Context, identity tenant.Identity, req UpdatePropertyRequest) (*Property, error)
	Delete(ctx context.Context, identity tenant.Identity, id string) error
	AddPhoto(ctx context.Context, identity tenant.Identity, req AddPhotoRequest) (*PropertyPhoto, error)
	SetMainPhoto(ctx context.Context, identity tenant.Identity, propertyID, photoID string) error
	DeletePhoto(ctx context.Context, identity tenant.Identity, propertyID, photoID string) error
}

var (
	ErrNotFound      = errors.New("property_not_found")
	ErrPhotoNotFound = errors.New("photo_not_found")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidType   = errors.New("invalid_type")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidPrice  = errors.New("invalid_price")
	ErrInvalidID     = errors.New("invalid_id")
)
