package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/property/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, property *domain.Property) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error)
	List(ctx context.Context, db *gorm.DB, identity tenant.Identity, req domain.ListPropertyRequest, page pagination.Pagination) ([]domain.Property, int64, error)
	Update(ctx context.Context, db *gorm.DB, property *domain.Property) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertPhoto(ctx context.Context, db *gorm.DB, photo *domain.PropertyPhoto) error
	FindPhoto(ctx context.Context, db *gorm.DB, propertyID, photoID snowflake.ID) (*domain.PropertyPhoto, error)
	CountMainPhotos(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) (int64, error)
	DeletePhoto(ctx context.Context, db *gorm.DB, photoID snowflake.ID) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).
		Preload("Photos").
		First(&property, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, identity tenant.Identity, req domain.ListPropertyRequest, page pagination.Pagination) ([]domain.Property, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Property{}).
		Scopes(tenant.Scope(identity))
	if status := strings.TrimSpace(req.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if propertyType := strings.TrimSpace(req.Type); propertyType != "" {
		stmt = stmt.Where("type = ?", propertyType)
	}
	if city := strings.TrimSpace(req.City); city != "" {
		stmt = stmt.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where("LOWER(title) LIKE ? OR LOWER(reference) LIKE ? OR LOWER(address) LIKE ?", like, like, like)
	}
	if req.MinPrice != nil {
		stmt = stmt.Where("price >= ?", *req.MinPrice)
	}
	if req.MaxPrice != nil {
		stmt = stmt.Where("price <= ?", *req.MaxPrice)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var properties []domain.Property
	err := page.Apply(stmt).
		Preload("Photos").
		Order("created_at desc, id desc").
		Find(&properties).Error
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Omit("Photos").Save(property).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.PropertyPhoto{}, "property_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Property{}, "id = ?", id).Error
	})
}

func (r *repo) InsertPhoto(ctx context.Context, db *gorm.DB, photo *domain.PropertyPhoto) error {
	return db.WithContext(ctx).Create(photo).Error
}

func (r *repo) FindPhoto(ctx context.Context, db *gorm.DB, propertyID, photoID snowflake.ID) (*domain.PropertyPhoto, error) {
	var photo domain.PropertyPhoto
	err := db.WithContext(ctx).
		First(&photo, "id = ? AND property_id = ?", photoID, propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *repo) CountMainPhotos(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.PropertyPhoto{}).
		Where("property_id = ? AND is_main = ?", propertyID, true).
		Count(&count).Error
	return count, err
}

func (r *repo) DeletePhoto(ctx context.Context, db *gorm.DB, photoID snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.PropertyPhoto{}, "id = ?", photoID).Error
}
