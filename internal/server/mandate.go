package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	mandatedomain "github.com/maisonlabs/courtier/internal/mandate/domain"
	"github.com/maisonlabs/courtier/internal/sequence"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createMandateRequest struct {
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Price          float64 `json:"price"`
	CommissionRate float64 `json:"commission_rate"`
	Notes          string  `json:"notes"`
	PropertyID     string  `json:"property_id"`
	ClientID       string  `json:"client_id"`
	AgencyID       string  `json:"agency_id"`
}

func validMandateType(value string) bool {
	switch value {
	case mandatedomain.TypeSimple, mandatedomain.TypeExclusive, mandatedomain.TypeSemi:
		return true
	default:
		return false
	}
}

func (s *Server) CreateMandate(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	mandateType := strings.ToUpper(strings.TrimSpace(req.Type))
	if !validMandateType(mandateType) {
		AbortWithError(c, newValidationError("type", "invalid_type", "invalid type"))
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = mandatedomain.StatusActive
	}
	if !mandatedomain.ValidStatus(status) {
		AbortWithError(c, mandatedomain.ErrInvalidStatus)
		return
	}
	if req.Price <= 0 {
		AbortWithError(c, mandatedomain.ErrInvalidPrice)
		return
	}

	propertyID, err := parseOptionalSnowflakeID(req.PropertyID)
	if err != nil || propertyID == nil {
		AbortWithError(c, newValidationError("property_id", "invalid_property_id", "invalid property_id"))
		return
	}
	clientID, err := parseOptionalSnowflakeID(req.ClientID)
	if err != nil || clientID == nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client_id"))
		return
	}

	startDate, err := parseOptionalTime(req.StartDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	if startDate == nil {
		now := time.Now().UTC()
		startDate = &now
	}
	endDate, err := parseOptionalTime(req.EndDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	mandate := &mandatedomain.Mandate{
		ID:             s.genID.Generate(),
		Type:           mandateType,
		Status:         status,
		StartDate:      *startDate,
		EndDate:        endDate,
		Price:          req.Price,
		CommissionRate: req.CommissionRate,
		Notes:          req.Notes,
		UserID:         identity.UserID,
		PropertyID:     *propertyID,
		ClientID:       *clientID,
		AgencyID:       agencyID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		number, err := sequence.Next(c.Request.Context(), tx, sequence.PrefixMandate, agencyID)
		if err != nil {
			return err
		}
		mandate.MandateNumber = number
		return tx.Create(mandate).Error
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": mandate})
}

func (s *Server) ListMandates(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Status string `form:"status"`
		Type   string `form:"type"`
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&mandatedomain.Mandate{}).
		Scopes(tenant.Scope(identity))
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if mandateType := strings.ToUpper(strings.TrimSpace(query.Type)); mandateType != "" {
		stmt = stmt.Where("type = ?", mandateType)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		stmt = stmt.Where("mandate_number LIKE ?", "%"+strings.ToUpper(search)+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var mandates []mandatedomain.Mandate
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&mandates).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      mandates,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetMandateByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	mandate, err := s.findMandate(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mandate})
}

type updateMandateRequest struct {
	Status         *string  `json:"status"`
	EndDate        *string  `json:"end_date"`
	Price          *float64 `json:"price"`
	CommissionRate *float64 `json:"commission_rate"`
	Notes          *string  `json:"notes"`
}

func (s *Server) UpdateMandate(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	mandate, err := s.findMandate(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !mandatedomain.ValidStatus(status) {
			AbortWithError(c, mandatedomain.ErrInvalidStatus)
			return
		}
		mandate.Status = status
	}
	if req.EndDate != nil {
		endDate, err := parseOptionalTime(*req.EndDate, true)
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
			return
		}
		mandate.EndDate = endDate
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			AbortWithError(c, mandatedomain.ErrInvalidPrice)
			return
		}
		mandate.Price = *req.Price
	}
	if req.CommissionRate != nil {
		mandate.CommissionRate = *req.CommissionRate
	}
	if req.Notes != nil {
		mandate.Notes = *req.Notes
	}
	mandate.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(mandate).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mandate})
}

func (s *Server) DeleteMandate(c *gin.Context) {
	identity, _ := identityFrom(c)

	mandate, err := s.findMandate(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&mandatedomain.Mandate{}, "id = ?", mandate.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findMandate(c *gin.Context, identity tenant.Identity) (*mandatedomain.Mandate, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, mandatedomain.ErrNotFound
	}

	var mandate mandatedomain.Mandate
	err = s.db.WithContext(c.Request.Context()).First(&mandate, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mandatedomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, mandate.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &mandate, nil
}

func isMandateValidationError(err error) bool {
	switch err {
	case mandatedomain.ErrInvalidStatus,
		mandatedomain.ErrInvalidPrice:
		return true
	default:
		return false
	}
}
