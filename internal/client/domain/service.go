package domain

import (
	"context"

	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
)

type ListClientRequest struct {
	pagination.Pagination
	ClientType string
	Search     string
}

type ListClientResponse struct {
	Items      []Client            `json:"items"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type CreateClientRequest struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
	ClientType string
	Notes      string
}

type UpdateClientRequest struct {
	ID         string
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Address    *string
	City       *string
	PostalCode *string
	Country    *string
	ClientType *string
	Notes      *string
}

type Service interface {
	Create(ctx context.Context, identity tenant.Identity, req CreateClientRequest) (*Client, error)
	List(ctx context.Context, identity tenant.Identity, req ListClientRequest) (*ListClientResponse, error)
	GetByID(ctx context.Context, identity tenant.Identity, id string) (*Client, error)
	Update(ctx context.Context, identity tenant.Identity, req UpdateClientRequest) (*Client, error)
	Delete(ctx context.Context, identity tenant.Identity, id string) error
}
