package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/property/domain"
	"github.com/maisonlabs/courtier/internal/property/repository"
	"github.com/maisonlabs/courtier/internal/sequence"
	"github.com/maisonlabs/courtier/internal/storage"
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
	Store *storage.Store
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository
	store *storage.Store
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("property.service"),
		genID: p.GenID,
		repo:  p.Repo,
		store: p.Store,
	}
}

func (s *Service) Create(ctx context.Context, identity tenant.Identity, req domain.CreatePropertyRequest) (*domain.Property, error) {
	if identity.AgencyID == 0 {
		return nil, tenant.ErrForbidden
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if !domain.ValidType(req.Type) {
		return nil, domain.ErrInvalidType
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusAvailable
	}
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	if req.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	property := &domain.Property{
		ID:          s.genID.Generate(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
		Status:      status,
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		Country:     strings.TrimSpace(req.Country),
		Price:       req.Price,
		Surface:     req.Surface,
		Rooms:       req.Rooms,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Floor:       req.Floor,
		HasElevator: req.HasElevator,
		HasParking:  req.HasParking,
		HasBalcony:  req.HasBalcony,
		HasGarden:   req.HasGarden,
		YearBuilt:   req.YearBuilt,
		EnergyClass: strings.TrimSpace(req.EnergyClass),
		UserID:      identity.UserID,
		ClientID:    req.ClientID,
		AgencyID:    identity.AgencyID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reference, err := sequence.Next(ctx, tx, sequence.PrefixProperty, identity.AgencyID)
		if err != nil {
			return err
		}
		property.Reference = reference
		return s.repo.Insert(ctx, tx, property)
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

func (s *Service) List(ctx context.Context, identity tenant.Identity, req domain.ListPropertyRequest) (*domain.ListPropertyResponse, error) {
	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, identity, req, page)
	if err != nil {
		return nil, err
	}
	return &domain.ListPropertyResponse{
		Items:      items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, identity tenant.Identity, id string) (*domain.Property, error) {
	propertyID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}

	property, err := s.repo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrNotFound
	}
	if !tenant.CanAccess(identity, property.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return property, nil
}

func (s *Service) Update(ctx context.Context, identity tenant.Identity, req domain.UpdatePropertyRequest) (*domain.Property, error) {
	property, err := s.GetByID(ctx, identity, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		property.Title = title
	}
	if req.Type != nil {
		if !domain.ValidType(*req.Type) {
			return nil, domain.ErrInvalidType
		}
		property.Type = *req.Type
	}
	if req.Status != nil {
		if !domain.ValidStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		property.Status = *req.Status
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, domain.ErrInvalidPrice
		}
		property.Price = *req.Price
	}
	applyString(&property.Description, req.Description)
	applyString(&property.Address, req.Address)
	applyString(&property.City, req.City)
	applyString(&property.PostalCode, req.PostalCode)
	applyString(&property.Country, req.Country)
	applyString(&property.EnergyClass, req.EnergyClass)
	applyFloat(&property.Surface, req.Surface)
	applyInt(&property.Rooms, req.Rooms)
	applyInt(&property.Bedrooms, req.Bedrooms)
	applyInt(&property.Bathrooms, req.Bathrooms)
	applyInt(&property.Floor, req.Floor)
	applyInt(&property.YearBuilt, req.YearBuilt)
	applyBool(&property.HasElevator, req.HasElevator)
	applyBool(&property.HasParking, req.HasParking)
	applyBool(&property.HasBalcony, req.HasBalcony)
	applyBool(&property.HasGarden, req.HasGarden)
	if req.ClientID != nil {
		property.ClientID = req.ClientID
	}
	property.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Delete removes the property together with its photo rows, then unlinks the
// stored photo files. Rows go first; a failed unlink leaves orphan files, not
// dangling rows.
func (s *Service) Delete(ctx context.Context, identity tenant.Identity, id string) error {
	property, err := s.GetByID(ctx, identity, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, property.ID); err != nil {
		return err
	}
	for i := range property.Photos {
		s.removePhotoFile(&property.Photos[i])
	}
	return nil
}

func (s *Service) AddPhoto(ctx context.Context, identity tenant.Identity, req domain.AddPhotoRequest) (*domain.PropertyPhoto, error) {
	property, err := s.GetByID(ctx, identity, req.PropertyID)
	if err != nil {
		return nil, err
	}

	photo := &domain.PropertyPhoto{
		ID:         s.genID.Generate(),
		PropertyID: property.ID,
		URL:        strings.TrimSpace(req.URL),
		Filename:   strings.TrimSpace(req.Filename),
		IsMain:     req.IsMain,
		SortOrder:  len(property.Photos),
		CreatedAt:  time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if photo.IsMain {
			if err := tx.Model(&domain.PropertyPhoto{}).
				Where("property_id = ?", property.ID).
				Update("is_main", false).Error; err != nil {
				return err
			}
		}
		return s.repo.InsertPhoto(ctx, tx, photo)
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// SetMainPhoto unsets the previous main photo and promotes the new one in a
// single transaction, so exactly one photo per property stays main.
func (s *Service) SetMainPhoto(ctx context.Context, identity tenant.Identity, propertyID, photoID string) error {
	property, err := s.GetByID(ctx, identity, propertyID)
	if err != nil {
		return err
	}

	id, err := s.parseID(photoID)
	if err != nil {
		return err
	}

	photo, err := s.repo.FindPhoto(ctx, s.db, property.ID, id)
	if err != nil {
		return err
	}
	if photo == nil {
		return domain.ErrPhotoNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.PropertyPhoto{}).
			Where("property_id = ?", property.ID).
			Update("is_main", false).Error; err != nil {
			return err
		}
		return tx.Model(&domain.PropertyPhoto{}).
			Where("id = ?", photo.ID).
			Update("is_main", true).Error
	})
}

func (s *Service) DeletePhoto(ctx context.Context, identity tenant.Identity, propertyID, photoID string) error {
	property, err := s.GetByID(ctx, identity, propertyID)
	if err != nil {
		return err
	}

	id, err := s.parseID(photoID)
	if err != nil {
		return err
	}

	photo, err := s.repo.FindPhoto(ctx, s.db, property.ID, id)
	if err != nil {
		return err
	}
	if photo == nil {
		return domain.ErrPhotoNotFound
	}

	if err := s.repo.DeletePhoto(ctx, s.db, photo.ID); err != nil {
		return err
	}
	s.removePhotoFile(photo)
	return nil
}

// removePhotoFile unlinks the stored file behind a photo served from
// /uploads. Externally hosted URLs are left alone.
func (s *Service) removePhotoFile(photo *domain.PropertyPhoto) {
	path, ok := strings.CutPrefix(photo.URL, "/uploads/")
	if !ok || path == "" {
		return
	}
	_ = s.store.Remove(path)
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

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
