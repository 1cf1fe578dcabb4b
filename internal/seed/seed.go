package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	"github.com/maisonlabs/courtier/internal/auth/password"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultAgencyCode = "DEMO"
	defaultAgencyName = "Agence Demo"

	defaultAdminEmail     = "admin@courtier.local"
	defaultAdminPassword  = "changeme123"
	defaultAdminFirstName = "Super"
	defaultAdminLastName  = "Admin"
)

// EnsureSuperAdmin seeds the bootstrap super admin and a demo agency so a
// fresh database is immediately usable. Existing rows are left untouched.
func EnsureSuperAdmin(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureDemoAgencyTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureSuperAdminTx(ctx, tx, node)
	})
}

func ensureDemoAgencyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (agencydomain.Agency, error) {
	var agency agencydomain.Agency
	err := tx.WithContext(ctx).Where("code = ?", defaultAgencyCode).First(&agency).Error
	if err == nil {
		return agency, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return agency, err
	}

	now := time.Now().UTC()
	agency = agencydomain.Agency{
		ID:        node.Generate(),
		Code:      defaultAgencyCode,
		Name:      defaultAgencyName,
		IsActive:  true,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&agency).Error; err != nil {
		return agency, err
	}
	return agency, nil
}

func ensureSuperAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var user userdomain.User
	err := tx.WithContext(ctx).
		Where("email = ?", strings.ToLower(defaultAdminEmail)).
		First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user = userdomain.User{
		ID:           node.Generate(),
		Email:        strings.ToLower(defaultAdminEmail),
		PasswordHash: hashed,
		FirstName:    defaultAdminFirstName,
		LastName:     defaultAdminLastName,
		Role:         userdomain.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&user).Error
}
