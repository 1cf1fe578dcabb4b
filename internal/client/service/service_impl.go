package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/client/domain"
	"github.com/maisonlabs/courtier/internal/client/repository"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  repository.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, identity tenant.Identity, req domain.CreateClientRequest) (*domain.Client, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, domain.ErrInvalidName
	}

	clientType := strings.ToUpper(strings.TrimSpace(req.ClientType))
	if clientType == "" {
		clientType = domain.TypeProspect
	}
	if !domain.ValidClientType(clientType) {
		return nil, domain.ErrInvalidType
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:         s.genID.Generate(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
		ClientType: clientType,
		Notes:      req.Notes,
		UserID:     identity.UserID,
		AgencyID:   identity.AgencyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) List(ctx context.Context, identity tenant.Identity, req domain.ListClientRequest) (*domain.ListClientResponse, error) {
	if req.ClientType != "" && !domain.ValidClientType(strings.ToUpper(req.ClientType)) {
		return nil, domain.ErrInvalidType
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, identity, req, page)
	if err != nil {
		return nil, err
	}
	return &domain.ListClientResponse{
		Items:      items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, identity tenant.Identity, id string) (*domain.Client, error) {
	clientID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if !tenant.CanAccess(identity, client.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return client, nil
}

func (s *Service) Update(ctx context.Context, identity tenant.Identity, req domain.UpdateClientRequest) (*domain.Client, error) {
	client, err := s.GetByID(ctx, identity, req.ID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		firstName := strings.TrimSpace(*req.FirstName)
		if firstName == "" {
			return nil, domain.ErrInvalidName
		}
		client.FirstName = firstName
	}
	if req.LastName != nil {
		lastName := strings.TrimSpace(*req.LastName)
		if lastName == "" {
			return nil, domain.ErrInvalidName
		}
		client.LastName = lastName
	}
	if req.ClientType != nil {
		clientType := strings.ToUpper(strings.TrimSpace(*req.ClientType))
		if !domain.ValidClientType(clientType) {
			return nil, domain.ErrInvalidType
		}
		client.ClientType = clientType
	}
	applyString(&client.Email, req.Email)
	applyString(&client.Phone, req.Phone)
	applyString(&client.Address, req.Address)
	applyString(&client.City, req.City)
	applyString(&client.PostalCode, req.PostalCode)
	applyString(&client.Country, req.Country)
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	client.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) Delete(ctx context.Context, identity tenant.Identity, id string) error {
	client, err := s.GetByID(ctx, identity, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, client.ID)
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
