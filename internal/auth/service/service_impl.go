package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	"github.com/maisonlabs/courtier/internal/auth/domain"
	"github.com/maisonlabs/courtier/internal/auth/password"
	"github.com/maisonlabs/courtier/internal/auth/token"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/maisonlabs/courtier/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.UserRepository
	Signer    *token.Signer
	AgencySvc agencydomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.UserRepository
	signer    *token.Signer
	agencySvc agencydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("auth.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		signer:    p.Signer,
		agencySvc: p.AgencySvc,
	}
}

// Login checks email, password and agency membership. Every failure collapses
// to ErrInvalidCredentials so the response never reveals which factor was
// wrong.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if user.Role != userdomain.RoleSuperAdmin {
		agency, err := s.agencySvc.VerifyCode(ctx, req.AgencyCode)
		if err != nil {
			return nil, domain.ErrInvalidCredentials
		}
		if user.AgencyID == nil || *user.AgencyID != agency.ID {
			return nil, domain.ErrInvalidCredentials
		}
	}

	signed, expiresAt, err := s.signer.Sign(token.Claims{
		UserID:   user.ID,
		Role:     user.Role,
		AgencyID: user.AgencyID,
	})
	if err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}

func (s *Service) Register(ctx context.Context, identity tenant.Identity, req domain.RegisterRequest) (*userdomain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, userdomain.ErrInvalidEmail
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = userdomain.RoleAgent
	}
	if !userdomain.ValidRole(role) {
		return nil, userdomain.ErrInvalidRole
	}
	if role == userdomain.RoleSuperAdmin && !identity.SuperAdmin {
		return nil, userdomain.ErrInvalidRole
	}

	agencyID := req.AgencyID
	if !identity.SuperAdmin {
		// Non-super-admin callers can only provision users in their own agency.
		own := identity.AgencyID
		if own == 0 {
			return nil, tenant.ErrForbidden
		}
		agencyID = &own
	}
	if role != userdomain.RoleSuperAdmin && (agencyID == nil || *agencyID == 0) {
		return nil, userdomain.ErrInvalidRole
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		AgencyID:     agencyID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == userdomain.RoleSuperAdmin {
		user.AgencyID = nil
	}

	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Resolve(ctx context.Context, rawToken string) (tenant.Identity, *userdomain.User, error) {
	claims, err := s.signer.Verify(rawToken)
	if err != nil {
		return tenant.Identity{}, nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, s.db, claims.UserID)
	if err != nil {
		return tenant.Identity{}, nil, err
	}
	if user == nil || !user.IsActive {
		return tenant.Identity{}, nil, domain.ErrInvalidToken
	}

	// The live user row wins over token claims so deactivation and role
	// changes take effect immediately.
	identity := tenant.Identity{
		UserID:     user.ID,
		Role:       user.Role,
		SuperAdmin: user.Role == userdomain.RoleSuperAdmin,
	}
	if user.AgencyID != nil {
		identity.AgencyID = *user.AgencyID
	}
	return identity, user, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}
