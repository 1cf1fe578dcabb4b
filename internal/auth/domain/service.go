package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
)

type LoginRequest struct {
	Email      string
	Password   string
	AgencyCode string
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      userdomain.User `json:"user"`
}

type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
	AgencyID  *snowflake.ID
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, identity tenant.Identity, req RegisterRequest) (*userdomain.User, error)
	// Resolve verifies a bearer token and loads the live user. It is the
	// single entry point for the auth middleware and /auth/me.
	Resolve(ctx context.Context, rawToken string) (tenant.Identity, *userdomain.User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserExists         = errors.New("user_exists")
	ErrWeakPassword       = errors.New("weak_password")
)
