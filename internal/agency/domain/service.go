package domain

import (
	"context"
	"errors"

	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
)

type ListAgencyRequest struct {
	pagination.Pagination
	Search   string
	IsActive *bool
}

type ListAgencyResponse struct {
	Items      []Agency            `json:"items"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type CreateAgencyRequest struct {
	Code       string
	Name       string
	Address    string
	City       string
	PostalCode string
	Country    string
	Phone      string
	Email      string
	Website    string
	Siret      string
}

type UpdateAgencyRequest struct {
	ID         string
	Name       *string
	Address    *string
	City       *string
	PostalCode *string
	Country    *string
	Phone      *string
	Email      *string
	Website    *string
	Siret      *string
	IsActive   *bool
}

type Service interface {
	VerifyCode(ctx context.Context, code string) (*Agency, error)
	Create(ctx context.Context, req CreateAgencyRequest) (*Agency, error)
	List(ctx context.Context, req ListAgencyRequest) (*ListAgencyResponse, error)
	GetByID(ctx context.Context, identity tenant.Identity, id string) (*Agency, error)
	Update(ctx context.Context, identity tenant.Identity, req UpdateAgencyRequest) (*Agency, error)
	Deactivate(ctx context.Context, identity tenant.Identity, id string) error
}

var (
	ErrNotFound    = errors.New("agency_not_found")
	ErrCodeExists  = errors.New("agency_code_exists")
	ErrInvalidCode = errors.New("invalid_code")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
)
