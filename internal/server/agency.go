package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	appointmentdomain "github.com/maisonlabs/courtier/internal/appointment/domain"
	clientdomain "github.com/maisonlabs/courtier/internal/client/domain"
	contractdomain "github.com/maisonlabs/courtier/internal/contract/domain"
	propertydomain "github.com/maisonlabs/courtier/internal/property/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
)

type createAgencyRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Website    string `json:"website"`
	Siret      string `json:"siret"`
}

func (s *Server) CreateAgency(c *gin.Context) {
	var req createAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agencySvc.Create(c.Request.Context(), agencydomain.CreateAgencyRequest{
		Code:       req.Code,
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		Email:      req.Email,
		Website:    req.Website,
		Siret:      req.Siret,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListAgencies(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search   string `form:"search"`
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

	resp, err := s.agencySvc.List(c.Request.Context(), agencydomain.ListAgencyRequest{
		Pagination: query.Pagination,
		Search:     strings.TrimSpace(query.Search),
		IsActive:   isActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgencyByID(c *gin.Context) {
	identity, _ := identityFrom(c)
	resp, err := s.agencySvc.GetByID(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateAgencyRequest struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Website    *string `json:"website"`
	Siret      *string `json:"siret"`
	IsActive   *bool   `json:"is_active"`
}

func (s *Server) UpdateAgency(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Reactivation stays a super admin operation.
	if req.IsActive != nil && !identity.SuperAdmin {
		req.IsActive = nil
	}

	resp, err := s.agencySvc.Update(c.Request.Context(), identity, agencydomain.UpdateAgencyRequest{
		ID:         c.Param("id"),
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		Email:      req.Email,
		Website:    req.Website,
		Siret:      req.Siret,
		IsActive:   req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateAgency(c *gin.Context) {
	identity, _ := identityFrom(c)
	if err := s.agencySvc.Deactivate(c.Request.Context(), identity, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deactivated": true}})
}

// AgencyStats is the per-agency home widget: headcounts, the latest listings
// and the next appointments.
func (s *Server) AgencyStats(c *gin.Context) {
	identity, _ := identityFrom(c)
	ctx := c.Request.Context()

	counts := gin.H{}
	models := []struct {
		name  string
		model any
	}{
		{"users", &userdomain.User{}},
		{"clients", &clientdomain.Client{}},
		{"properties", &propertydomain.Property{}},
		{"contracts", &contractdomain.Contract{}},
	}
	for _, m := range models {
		var total int64
		err := s.db.WithContext(ctx).
			Model(m.model).
			Scopes(tenant.Scope(identity)).
			Count(&total).Error
		if err != nil {
			AbortWithError(c, err)
			return
		}
		counts[m.name] = total
	}

	var recentProperties []propertydomain.Property
	err := s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Order("created_at desc, id desc").
		Limit(5).
		Find(&recentProperties).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := s.clock.Now()
	var upcomingAppointments []appointmentdomain.Appointment
	err = s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Where("status IN ? AND start_date >= ?",
			[]string{appointmentdomain.StatusScheduled, appointmentdomain.StatusConfirmed}, now).
		Order("start_date asc").
		Limit(5).
		Find(&upcomingAppointments).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"counts":                counts,
		"recent_properties":     recentProperties,
		"upcoming_appointments": upcomingAppointments,
	}})
}

func isAgencyValidationError(err error) bool {
	switch err {
	case agencydomain.ErrInvalidCode,
		agencydomain.ErrInvalidName,
		agencydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
