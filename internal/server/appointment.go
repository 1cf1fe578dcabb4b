package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appointmentdomain "github.com/maisonlabs/courtier/internal/appointment/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createAppointmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	ClientID    string `json:"client_id"`
	PropertyID  string `json:"property_id"`
	AgencyID    string `json:"agency_id"`
}

func (s *Server) CreateAppointment(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		AbortWithError(c, appointmentdomain.ErrInvalidTitle)
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = appointmentdomain.StatusScheduled
	}
	if !appointmentdomain.ValidStatus(status) {
		AbortWithError(c, appointmentdomain.ErrInvalidStatus)
		return
	}

	startDate, err := parseOptionalTime(req.StartDate, false)
	if err != nil || startDate == nil {
		AbortWithError(c, appointmentdomain.ErrInvalidDates)
		return
	}
	endDate, err := parseOptionalTime(req.EndDate, false)
	if err != nil {
		AbortWithError(c, appointmentdomain.ErrInvalidDates)
		return
	}
	if endDate != nil && endDate.Before(*startDate) {
		AbortWithError(c, appointmentdomain.ErrInvalidDates)
		return
	}

	clientID, err := parseOptionalSnowflakeID(req.ClientID)
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client_id"))
		return
	}
	propertyID, err := parseOptionalSnowflakeID(req.PropertyID)
	if err != nil {
		AbortWithError(c, newValidationError("property_id", "invalid_property_id", "invalid property_id"))
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	appointment := &appointmentdomain.Appointment{
		ID:          s.genID.Generate(),
		Title:       title,
		Description: req.Description,
		StartDate:   *startDate,
		EndDate:     endDate,
		Location:    strings.TrimSpace(req.Location),
		Status:      status,
		UserID:      identity.UserID,
		ClientID:    clientID,
		PropertyID:  propertyID,
		AgencyID:    agencyID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(c.Request.Context()).Create(appointment).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": appointment})
}

func (s *Server) ListAppointments(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Status    string `form:"status"`
		StartFrom string `form:"start_from"`
		StartTo   string `form:"start_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startFrom, err := parseOptionalTime(query.StartFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_from", "invalid_start_from", "invalid start_from"))
		return
	}
	startTo, err := parseOptionalTime(query.StartTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("start_to", "invalid_start_to", "invalid start_to"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&appointmentdomain.Appointment{}).
		Scopes(tenant.Scope(identity))
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if startFrom != nil {
		stmt = stmt.Where("start_date >= ?", *startFrom)
	}
	if startTo != nil {
		stmt = stmt.Where("start_date <= ?", *startTo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var appointments []appointmentdomain.Appointment
	err = page.Apply(stmt).
		Order("start_date asc, id desc").
		Find(&appointments).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      appointments,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetAppointmentByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	appointment, err := s.findAppointment(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": appointment})
}

type updateAppointmentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
}

func (s *Server) UpdateAppointment(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	appointment, err := s.findAppointment(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			AbortWithError(c, appointmentdomain.ErrInvalidTitle)
			return
		}
		appointment.Title = title
	}
	if req.Description != nil {
		appointment.Description = *req.Description
	}
	if req.StartDate != nil {
		startDate, err := parseOptionalTime(*req.StartDate, false)
		if err != nil || startDate == nil {
			AbortWithError(c, appointmentdomain.ErrInvalidDates)
			return
		}
		appointment.StartDate = *startDate
	}
	if req.EndDate != nil {
		endDate, err := parseOptionalTime(*req.EndDate, false)
		if err != nil {
			AbortWithError(c, appointmentdomain.ErrInvalidDates)
			return
		}
		appointment.EndDate = endDate
	}
	if appointment.EndDate != nil && appointment.EndDate.Before(appointment.StartDate) {
		AbortWithError(c, appointmentdomain.ErrInvalidDates)
		return
	}
	if req.Location != nil {
		appointment.Location = strings.TrimSpace(*req.Location)
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !appointmentdomain.ValidStatus(status) {
			AbortWithError(c, appointmentdomain.ErrInvalidStatus)
			return
		}
		appointment.Status = status
	}
	appointment.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(appointment).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": appointment})
}

func (s *Server) DeleteAppointment(c *gin.Context) {
	identity, _ := identityFrom(c)

	appointment, err := s.findAppointment(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&appointmentdomain.Appointment{}, "id = ?", appointment.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findAppointment(c *gin.Context, identity tenant.Identity) (*appointmentdomain.Appointment, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, appointmentdomain.ErrNotFound
	}

	var appointment appointmentdomain.Appointment
	err = s.db.WithContext(c.Request.Context()).First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointmentdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, appointment.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &appointment, nil
}

func isAppointmentValidationError(err error) bool {
	switch err {
	case appointmentdomain.ErrInvalidTitle,
		appointmentdomain.ErrInvalidStatus,
		appointmentdomain.ErrInvalidDates:
		return true
	default:
		return false
	}
}
