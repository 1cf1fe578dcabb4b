package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	savedsearchdomain "github.com/maisonlabs/courtier/internal/savedsearch/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type createSavedSearchRequest struct {
	Name     string         `json:"name"`
	Filters  map[string]any `json:"filters"`
	AgencyID string         `json:"agency_id"`
}

func (s *Server) CreateSavedSearch(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createSavedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, savedsearchdomain.ErrInvalidName)
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filters := datatypes.JSONMap(req.Filters)
	if filters == nil {
		filters = datatypes.JSONMap{}
	}

	now := time.Now().UTC()
	search := &savedsearchdomain.SavedSearch{
		ID:        s.genID.Generate(),
		Name:      name,
		Filters:   filters,
		IsActive:  true,
		UserID:    identity.UserID,
		AgencyID:  agencyID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(c.Request.Context()).Create(search).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": search})
}

func (s *Server) ListSavedSearches(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		IsActive string `form:"is_active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isActive, err := parseOptionalBool(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&savedsearchdomain.SavedSearch{}).
		Scopes(tenant.Scope(identity))
	if isActive != nil {
		stmt = stmt.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var searches []savedsearchdomain.SavedSearch
	err = page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&searches).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      searches,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetSavedSearchByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	search, err := s.findSavedSearch(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": search})
}

type updateSavedSearchRequest struct {
	Name     *string        `json:"name"`
	Filters  map[string]any `json:"filters"`
	IsActive *bool          `json:"is_active"`
}

func (s *Server) UpdateSavedSearch(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateSavedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	search, err := s.findSavedSearch(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			AbortWithError(c, savedsearchdomain.ErrInvalidName)
			return
		}
		search.Name = name
	}
	if req.Filters != nil {
		search.Filters = datatypes.JSONMap(req.Filters)
	}
	if req.IsActive != nil {
		search.IsActive = *req.IsActive
	}
	search.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(search).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": search})
}

func (s *Server) DeleteSavedSearch(c *gin.Context) {
	identity, _ := identityFrom(c)

	search, err := s.findSavedSearch(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&savedsearchdomain.SavedSearch{}, "id = ?", search.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findSavedSearch(c *gin.Context, identity tenant.Identity) (*savedsearchdomain.SavedSearch, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, savedsearchdomain.ErrNotFound
	}

	var search savedsearchdomain.SavedSearch
	err = s.db.WithContext(c.Request.Context()).First(&search, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, savedsearchdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, search.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &search, nil
}

func isSavedSearchValidationError(err error) bool {
	return err == savedsearchdomain.ErrInvalidName
}
