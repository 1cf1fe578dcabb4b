package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/client/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error)
	List(ctx context.Context, db *gorm.DB, identity tenant.Identity, req domain.ListClientRequest, page pagination.Pagination) ([]domain.Client, int64, error)
	Update(ctx context.Context, db *gorm.DB, client *domain.Client) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Create(client).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, identity tenant.Identity, req domain.ListClientRequest, page pagination.Pagination) ([]domain.Client, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Client{}).
		Scopes(tenant.Scope(identity))
	if clientType := strings.TrimSpace(req.ClientType); clientType != "" {
		stmt = stmt.Where("client_type = ?", clientType)
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []domain.Client
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Save(client).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Client{}, "id = ?", id).Error
}
