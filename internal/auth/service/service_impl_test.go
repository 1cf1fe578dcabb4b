package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	"github.com/maisonlabs/courtier/internal/auth/domain"
	"github.com/maisonlabs/courtier/internal/auth/password"
	"github.com/maisonlabs/courtier/internal/auth/repository"
	"github.com/maisonlabs/courtier/internal/auth/token"
	"github.com/maisonlabs/courtier/internal/config"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// -- Mocks --

type agencyMock struct {
	mock.Mock
}

func (m *agencyMock) VerifyCode(ctx context.Context, code string) (*agencydomain.Agency, error) {
	args := m.Called(ctx, code)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*agencydomain.Agency), args.Error(1)
}

func (m *agencyMock) Create(context.Context, agencydomain.CreateAgencyRequest) (*agencydomain.Agency, error) {
	return nil, nil
}
func (m *agencyMock) List(context.Context, agencydomain.ListAgencyRequest) (*agencydomain.ListAgencyResponse, error) {
	return nil, nil
}
func (m *agencyMock) GetByID(context.Context, tenant.Identity, string) (*agencydomain.Agency, error) {
	return nil, nil
}
func (m *agencyMock) Update(context.Context, tenant.Identity, agencydomain.UpdateAgencyRequest) (*agencydomain.Agency, error) {
	return nil, nil
}
func (m *agencyMock) Deactivate(context.Context, tenant.Identity, string) error { return nil }

// -- Helpers --

type authFixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	svc    domain.Service
	agency *agencyMock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	signer, err := token.NewSigner(config.Config{AuthJWTSecret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	agencySvc := &agencyMock{}
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Signer:    signer,
		AgencySvc: agencySvc,
	})
	return &authFixture{db: db, node: node, svc: svc, agency: agencySvc}
}

func (f *authFixture) createUser(t *testing.T, email, plain, role string, agencyID *snowflake.ID, active bool) *userdomain.User {
	t.Helper()
	hashed, err := password.Hash(plain)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           f.node.Generate(),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		AgencyID:     agencyID,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.db.Create(user).Error)
	if !active {
		// GORM substitutes the column default (true) for the zero-value
		// bool on insert, so inactive users need an explicit update.
		require.NoError(t, f.db.Model(user).Update("is_active", false).Error)
	}
	return user
}

// -- Tests --

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	agencyID := f.node.Generate()
	f.agency.On("VerifyCode", mock.Anything, "NICE01").
		Return(&agencydomain.Agency{ID: agencyID, Code: "NICE01"}, nil)

	user := f.createUser(t, "agent@nice.fr", "s3cret-pass", userdomain.RoleAgent, &agencyID, true)

	result, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:      "agent@nice.fr",
		Password:   "s3cret-pass",
		AgencyCode: "NICE01",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
	assert.True(t, result.ExpiresAt.After(time.Now()))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	agencyID := f.node.Generate()
	otherAgencyID := f.node.Generate()
	f.agency.On("VerifyCode", mock.Anything, "NICE01").
		Return(&agencydomain.Agency{ID: agencyID, Code: "NICE01"}, nil)
	f.agency.On("VerifyCode", mock.Anything, "PARIS01").
		Return(&agencydomain.Agency{ID: otherAgencyID, Code: "PARIS01"}, nil)
	f.agency.On("VerifyCode", mock.Anything, "NOPE").
		Return(nil, agencydomain.ErrNotFound)

	f.createUser(t, "agent@nice.fr", "s3cret-pass", userdomain.RoleAgent, &agencyID, true)
	f.createUser(t, "gone@nice.fr", "s3cret-pass", userdomain.RoleAgent, &agencyID, false)

	tests := []struct {
		name string
		req  domain.LoginRequest
	}{
		{"unknown email", domain.LoginRequest{Email: "nobody@nice.fr", Password: "s3cret-pass", AgencyCode: "NICE01"}},
		{"wrong password", domain.LoginRequest{Email: "agent@nice.fr", Password: "wrong-pass", AgencyCode: "NICE01"}},
		{"unknown agency code", domain.LoginRequest{Email: "agent@nice.fr", Password: "s3cret-pass", AgencyCode: "NOPE"}},
		{"agency mismatch", domain.LoginRequest{Email: "agent@nice.fr", Password: "s3cret-pass", AgencyCode: "PARIS01"}},
		{"inactive user", domain.LoginRequest{Email: "gone@nice.fr", Password: "s3cret-pass", AgencyCode: "NICE01"}},
		{"malformed email", domain.LoginRequest{Email: "not-an-email", Password: "s3cret-pass", AgencyCode: "NICE01"}},
		{"empty password", domain.LoginRequest{Email: "agent@nice.fr", Password: "", AgencyCode: "NICE01"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestLoginSuperAdminSkipsAgencyCode(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "root@courtier.local", "changeme123", userdomain.RoleSuperAdmin, nil, true)

	result, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "root@courtier.local",
		Password: "changeme123",
	})
	require.NoError(t, err)
	assert.Equal(t, userdomain.RoleSuperAdmin, result.User.Role)
	f.agency.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything)
}

func TestResolve(t *testing.T) {
	f := newAuthFixture(t)
	agencyID := f.node.Generate()
	f.agency.On("VerifyCode", mock.Anything, "NICE01").
		Return(&agencydomain.Agency{ID: agencyID, Code: "NICE01"}, nil)

	user := f.createUser(t, "agent@nice.fr", "s3cret-pass", userdomain.RoleAgent, &agencyID, true)

	result, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:      "agent@nice.fr",
		Password:   "s3cret-pass",
		AgencyCode: "NICE01",
	})
	require.NoError(t, err)

	identity, resolved, err := f.svc.Resolve(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, agencyID, identity.AgencyID)
	assert.False(t, identity.SuperAdmin)
	assert.Equal(t, user.Email, resolved.Email)

	_, _, err = f.svc.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestResolveRejectsDeactivatedUser(t *testing.T) {
	f := newAuthFixture(t)
	agencyID := f.node.Generate()
	f.agency.On("VerifyCode", mock.Anything, "NICE01").
		Return(&agencydomain.Agency{ID: agencyID, Code: "NICE01"}, nil)

	user := f.createUser(t, "agent@nice.fr", "s3cret-pass", userdomain.RoleAgent, &agencyID, true)

	result, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:      "agent@nice.fr",
		Password:   "s3cret-pass",
		AgencyCode: "NICE01",
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&userdomain.User{}).
		Where("id = ?", user.ID).
		Update("is_active", false).Error)

	_, _, err = f.svc.Resolve(context.Background(), result.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)
	agencyID := f.node.Generate()
	identity := tenant.Identity{UserID: f.node.Generate(), Role: userdomain.RoleAdmin, AgencyID: agencyID}

	t.Run("creates agent in caller's agency", func(t *testing.T) {
		user, err := f.svc.Register(context.Background(), identity, domain.RegisterRequest{
			Email:     "New.Agent@nice.fr",
			Password:  "s3cret-pass",
			FirstName: "Jean",
			LastName:  "Martin",
		})
		require.NoError(t, err)
		assert.Equal(t, "new.agent@nice.fr", user.Email)
		assert.Equal(t, userdomain.RoleAgent, user.Role)
		require.NotNil(t, user.AgencyID)
		assert.Equal(t, agencyID, *user.AgencyID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := f.svc.Register(context.Background(), identity, domain.RegisterRequest{
			Email:    "new.agent@nice.fr",
			Password: "s3cret-pass",
		})
		assert.ErrorIs(t, err, domain.ErrUserExists)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := f.svc.Register(context.Background(), identity, domain.RegisterRequest{
			Email:    "other@nice.fr",
			Password: "short",
		})
		assert.ErrorIs(t, err, domain.ErrWeakPassword)
	})

	t.Run("only super admins can mint super admins", func(t *testing.T) {
		_, err := f.svc.Register(context.Background(), identity, domain.RegisterRequest{
			Email:    "boss@nice.fr",
			Password: "s3cret-pass",
			Role:     userdomain.RoleSuperAdmin,
		})
		assert.ErrorIs(t, err, userdomain.ErrInvalidRole)

		root := tenant.Identity{UserID: f.node.Generate(), Role: userdomain.RoleSuperAdmin, SuperAdmin: true}
		user, err := f.svc.Register(context.Background(), root, domain.RegisterRequest{
			Email:    "boss@nice.fr",
			Password: "s3cret-pass",
			Role:     userdomain.RoleSuperAdmin,
		})
		require.NoError(t, err)
		assert.Nil(t, user.AgencyID)
	})
}
