package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListAgencyFilter struct {
	Search   string
	IsActive *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, agency *Agency) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Agency, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Agency, error)
	List(ctx context.Context, db *gorm.DB, filter ListAgencyFilter, page pagination.Pagination) ([]Agency, int64, error)
	Update(ctx context.Context, db *gorm.DB, agency *Agency) error
}
