package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/agency/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("agency.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// VerifyCode resolves an active agency by its human-entered code. The lookup
// is case-insensitive and never distinguishes "unknown code" from "inactive
// agency" for the caller.
func (s *Service) VerifyCode(ctx context.Context, code string) (*domain.Agency, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	agency, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if agency == nil || !agency.IsActive {
		return nil, domain.ErrNotFound
	}
	return agency, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateAgencyRequest) (*domain.Agency, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCodeExists
	}

	now := time.Now().UTC()
	agency := &domain.Agency{
		ID:         s.genID.Generate(),
		Code:       code,
		Name:       name,
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		Website:    strings.TrimSpace(req.Website),
		Siret:      strings.TrimSpace(req.Siret),
		IsActive:   true,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, agency); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}
	return agency, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAgencyRequest) (*domain.ListAgencyResponse, error) {
	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, domain.ListAgencyFilter{
		Search:   req.Search,
		IsActive: req.IsActive,
	}, page)
	if err != nil {
		return nil, err
	}
	return &domain.ListAgencyResponse{
		Items:      items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, identity tenant.Identity, id string) (*domain.Agency, error) {
	agencyID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}

	agency, err := s.repo.FindByID(ctx, s.db, agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, domain.ErrNotFound
	}
	if !tenant.CanAccess(identity, agency.ID) {
		return nil, tenant.ErrForbidden
	}
	return agency, nil
}

func (s *Service) Update(ctx context.Context, identity tenant.Identity, req domain.UpdateAgencyRequest) (*domain.Agency, error) {
	agency, err := s.GetByID(ctx, identity, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		agency.Name = name
	}
	applyString(&agency.Address, req.Address)
	applyString(&agency.City, req.City)
	applyString(&agency.PostalCode, req.PostalCode)
	applyString(&agency.Country, req.Country)
	applyString(&agency.Phone, req.Phone)
	applyString(&agency.Email, req.Email)
	applyString(&agency.Website, req.Website)
	applyString(&agency.Siret, req.Siret)
	if req.IsActive != nil {
		agency.IsActive = *req.IsActive
	}
	agency.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

func (s *Service) Deactivate(ctx context.Context, identity tenant.Identity, id string) error {
	inactive := false
	_, err := s.Update(ctx, identity, domain.UpdateAgencyRequest{ID: id, IsActive: &inactive})
	return err
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
