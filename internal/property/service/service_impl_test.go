package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/maisonlabs/courtier/internal/config"
	"github.com/maisonlabs/courtier/internal/property/domain"
	"github.com/maisonlabs/courtier/internal/property/repository"
	"github.com/maisonlabs/courtier/internal/sequence"
	"github.com/maisonlabs/courtier/internal/storage"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type propertyFixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	store    *storage.Store
	root     string
	svc      domain.Service
	identity tenant.Identity
}

func newPropertyFixture(t *testing.T) *propertyFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Property{}, &domain.PropertyPhoto{}, &sequence.Counter{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	root := t.TempDir()
	store, err := storage.New(storage.Params{
		Config: config.Config{UploadsDir: root},
		Log:    zap.NewNop(),
		GenID:  node,
	})
	require.NoError(t, err)

	agencyID := node.Generate()
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Store: store,
	})

	return &propertyFixture{
		db:    db,
		node:  node,
		store: store,
		root:  root,
		svc:   svc,
		identity: tenant.Identity{
			UserID:   node.Generate(),
			Role:     userdomain.RoleAgent,
			AgencyID: agencyID,
		},
	}
}

func (f *propertyFixture) createProperty(t *testing.T) *domain.Property {
	t.Helper()
	property, err := f.svc.Create(context.Background(), f.identity, domain.CreatePropertyRequest{
		Title: "Villa vue mer",
		Type:  domain.TypeVilla,
		City:  "Cannes",
		Price: 1250000,
	})
	require.NoError(t, err)
	return property
}

func (f *propertyFixture) addStoredPhoto(t *testing.T, propertyID snowflake.ID, isMain bool) (*domain.PropertyPhoto, string) {
	t.Helper()
	_, path, _, err := f.store.Save(f.identity.AgencyID, "facade.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	photo, err := f.svc.AddPhoto(context.Background(), f.identity, domain.AddPhotoRequest{
		PropertyID: propertyID.String(),
		URL:        "/uploads/" + path,
		Filename:   filepath.Base(path),
		IsMain:     isMain,
	})
	require.NoError(t, err)

	abs := filepath.Join(f.root, path)
	_, err = os.Stat(abs)
	require.NoError(t, err, "stored photo file should exist after upload")
	return photo, abs
}

func TestDeletePhotoRemovesStoredFile(t *testing.T) {
	f := newPropertyFixture(t)
	property := f.createProperty(t)
	photo, abs := f.addStoredPhoto(t, property.ID, false)

	err := f.svc.DeletePhoto(context.Background(), f.identity, property.ID.String(), photo.ID.String())
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&domain.PropertyPhoto{}).
		Where("id = ?", photo.ID).
		Count(&count).Error)
	assert.Zero(t, count)

	_, err = os.Stat(abs)
	assert.True(t, os.IsNotExist(err), "stored photo file should be gone after delete")
}

func TestDeletePhotoLeavesExternalURLsAlone(t *testing.T) {
	f := newPropertyFixture(t)
	property := f.createProperty(t)

	photo, err := f.svc.AddPhoto(context.Background(), f.identity, domain.AddPhotoRequest{
		PropertyID: property.ID.String(),
		URL:        "https://cdn.example.com/villa.jpg",
	})
	require.NoError(t, err)

	err = f.svc.DeletePhoto(context.Background(), f.identity, property.ID.String(), photo.ID.String())
	require.NoError(t, err)
}

func TestDeletePropertyRemovesPhotoFiles(t *testing.T) {
	f := newPropertyFixture(t)
	property := f.createProperty(t)
	_, first := f.addStoredPhoto(t, property.ID, true)
	_, second := f.addStoredPhoto(t, property.ID, false)

	require.NoError(t, f.svc.Delete(context.Background(), f.identity, property.ID.String()))

	var photos int64
	require.NoError(t, f.db.Model(&domain.PropertyPhoto{}).
		Where("property_id = ?", property.ID).
		Count(&photos).Error)
	assert.Zero(t, photos)

	for _, abs := range []string{first, second} {
		_, err := os.Stat(abs)
		assert.True(t, os.IsNotExist(err), "photo file %s should be gone after property delete", abs)
	}
}
