package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"gorm.io/gorm"
)

type UserRepository interface {
	Insert(ctx context.Context, db *gorm.DB, user *userdomain.User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*userdomain.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*userdomain.User, error)
}
