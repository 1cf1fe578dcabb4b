package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	communicationdomain "github.com/maisonlabs/courtier/internal/communication/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createCommunicationRequest struct {
	Type       string `json:"type"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	Recipient  string `json:"recipient"`
	Status     string `json:"status"`
	SentAt     string `json:"sent_at"`
	ClientID   string `json:"client_id"`
	PropertyID string `json:"property_id"`
	AgencyID   string `json:"agency_id"`
}

func (s *Server) CreateCommunication(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	commType := strings.ToUpper(strings.TrimSpace(req.Type))
	if !communicationdomain.ValidType(commType) {
		AbortWithError(c, communicationdomain.ErrInvalidType)
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = communicationdomain.StatusSent
	}
	if !communicationdomain.ValidStatus(status) {
		AbortWithError(c, communicationdomain.ErrInvalidStatus)
		return
	}

	sentAt, err := parseOptionalTime(req.SentAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("sent_at", "invalid_sent_at", "invalid sent_at"))
		return
	}
	if sentAt == nil {
		now := s.clock.Now()
		sentAt = &now
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
	comm := &communicationdomain.Communication{
		ID:         s.genID.Generate(),
		Type:       commType,
		Subject:    strings.TrimSpace(req.Subject),
		Content:    req.Content,
		Recipient:  strings.TrimSpace(req.Recipient),
		Status:     status,
		SentAt:     *sentAt,
		UserID:     identity.UserID,
		ClientID:   clientID,
		PropertyID: propertyID,
		AgencyID:   agencyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.WithContext(c.Request.Context()).Create(comm).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": comm})
}

func (s *Server) ListCommunications(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Type     string `form:"type"`
		Status   string `form:"status"`
		SentFrom string `form:"sent_from"`
		SentTo   string `form:"sent_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sentFrom, err := parseOptionalTime(query.SentFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("sent_from", "invalid_sent_from", "invalid sent_from"))
		return
	}
	sentTo, err := parseOptionalTime(query.SentTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("sent_to", "invalid_sent_to", "invalid sent_to"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&communicationdomain.Communication{}).
		Scopes(tenant.Scope(identity))
	if commType := strings.ToUpper(strings.TrimSpace(query.Type)); commType != "" {
		stmt = stmt.Where("type = ?", commType)
	}
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if sentFrom != nil {
		stmt = stmt.Where("sent_at >= ?", *sentFrom)
	}
	if sentTo != nil {
		stmt = stmt.Where("sent_at <= ?", *sentTo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var comms []communicationdomain.Communication
	err = page.Apply(stmt).
		Order("sent_at desc, id desc").
		Find(&comms).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      comms,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetCommunicationByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	comm, err := s.findCommunication(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comm})
}

type updateCommunicationRequest struct {
	Subject   *string `json:"subject"`
	Content   *string `json:"content"`
	Recipient *string `json:"recipient"`
	Status    *string `json:"status"`
}

func (s *Server) UpdateCommunication(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	comm, err := s.findCommunication(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Subject != nil {
		comm.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Content != nil {
		comm.Content = *req.Content
	}
	if req.Recipient != nil {
		comm.Recipient = strings.TrimSpace(*req.Recipient)
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !communicationdomain.ValidStatus(status) {
			AbortWithError(c, communicationdomain.ErrInvalidStatus)
			return
		}
		comm.Status = status
	}
	comm.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(comm).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comm})
}

func (s *Server) DeleteCommunication(c *gin.Context) {
	identity, _ := identityFrom(c)

	comm, err := s.findCommunication(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&communicationdomain.Communication{}, "id = ?", comm.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findCommunication(c *gin.Context, identity tenant.Identity) (*communicationdomain.Communication, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, communicationdomain.ErrNotFound
	}

	var comm communicationdomain.Communication
	err = s.db.WithContext(c.Request.Context()).First(&comm, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, communicationdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, comm.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &comm, nil
}

func isCommunicationValidationError(err error) bool {
	switch err {
	case communicationdomain.ErrInvalidType,
		communicationdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
