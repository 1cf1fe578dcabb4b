package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	agencyrepo "github.com/maisonlabs/courtier/internal/agency/repository"
	agencyservice "github.com/maisonlabs/courtier/internal/agency/service"
	analyticsservice "github.com/maisonlabs/courtier/internal/analytics/service"
	"github.com/maisonlabs/courtier/internal/auth/password"
	authrepo "github.com/maisonlabs/courtier/internal/auth/repository"
	authservice "github.com/maisonlabs/courtier/internal/auth/service"
	"github.com/maisonlabs/courtier/internal/auth/token"
	"github.com/maisonlabs/courtier/internal/authorization"
	clientrepo "github.com/maisonlabs/courtier/internal/client/repository"
	clientservice "github.com/maisonlabs/courtier/internal/client/service"
	"github.com/maisonlabs/courtier/internal/clock"
	"github.com/maisonlabs/courtier/internal/config"
	"github.com/maisonlabs/courtier/internal/migration"
	propertyrepo "github.com/maisonlabs/courtier/internal/property/repository"
	propertyservice "github.com/maisonlabs/courtier/internal/property/service"
	"github.com/maisonlabs/courtier/internal/storage"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	srv   *Server
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock

	agencyA *agencydomain.Agency
	agencyB *agencydomain.Agency
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.Models()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{
		Environment:   "test",
		AuthJWTSecret: "0123456789abcdef0123456789abcdef",
		UploadsDir:    t.TempDir(),
	}

	signer, err := token.NewSigner(cfg)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))

	store, err := storage.New(storage.Params{Config: cfg, Log: log, GenID: node})
	require.NoError(t, err)

	agencySvc := agencyservice.New(agencyservice.Params{DB: db, Log: log, GenID: node, Repo: agencyrepo.Provide()})
	authSvc := authservice.New(authservice.Params{DB: db, Log: log, GenID: node, Repo: authrepo.Provide(), Signer: signer, AgencySvc: agencySvc})
	clientSvc := clientservice.New(clientservice.Params{DB: db, Log: log, GenID: node, Repo: clientrepo.Provide()})
	propertySvc := propertyservice.New(propertyservice.Params{DB: db, Log: log, GenID: node, Repo: propertyrepo.Provide(), Store: store})
	analyticsSvc := analyticsservice.New(analyticsservice.Params{DB: db, Log: log, Clock: fake})

	enforcer, err := authorization.NewEnforcer()
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware(true))

	srv := NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		Store:        store,
		Authsvc:      authSvc,
		AuthzSvc:     authzSvc,
		AgencySvc:    agencySvc,
		ClientSvc:    clientSvc,
		PropertySvc:  propertySvc,
		AnalyticsSvc: analyticsSvc,
	})

	h := &harness{srv: srv, db: db, node: node, clock: fake}
	h.agencyA = h.createAgency(t, "NICE01", "Agence Nice Centre")
	h.agencyB = h.createAgency(t, "PARIS01", "Agence Paris Rive Gauche")
	return h
}

func (h *harness) createAgency(t *testing.T, code, name string) *agencydomain.Agency {
	t.Helper()
	now := time.Now().UTC()
	agency := &agencydomain.Agency{
		ID:        h.node.Generate(),
		Code:      code,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, h.db.Create(agency).Error)
	return agency
}

func (h *harness) createUser(t *testing.T, email, role string, agencyID *snowflake.ID) *userdomain.User {
	t.Helper()
	hashed, err := password.Hash("s3cret-pass")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           h.node.Generate(),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		AgencyID:     agencyID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, h.db.Create(user).Error)
	return user
}

func (h *harness) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	h.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T, email, agencyCode string) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":      email,
		"password":   "s3cret-pass",
		"agencyCode": agencyCode,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func errorType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Type
}
