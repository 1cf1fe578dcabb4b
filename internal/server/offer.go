package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	offerdomain "github.com/maisonlabs/courtier/internal/offer/domain"
	"github.com/maisonlabs/courtier/internal/sequence"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createOfferRequest struct {
	Amount     float64 `json:"amount"`
	Conditions string  `json:"conditions"`
	Notes      string  `json:"notes"`
	PropertyID string  `json:"property_id"`
	ClientID   string  `json:"client_id"`
	AgencyID   string  `json:"agency_id"`
}

func (s *Server) CreateOffer(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.Amount <= 0 {
		AbortWithError(c, offerdomain.ErrInvalidAmount)
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

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	offer := &offerdomain.Offer{
		ID:         s.genID.Generate(),
		Amount:     req.Amount,
		Status:     offerdomain.StatusPending,
		Conditions: req.Conditions,
		Notes:      req.Notes,
		UserID:     identity.UserID,
		PropertyID: *propertyID,
		ClientID:   *clientID,
		AgencyID:   agencyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		number, err := sequence.Next(c.Request.Context(), tx, sequence.PrefixOffer, agencyID)
		if err != nil {
			return err
		}
		offer.OfferNumber = number
		return tx.Create(offer).Error
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": offer})
}

func (s *Server) ListOffers(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		PropertyID string `form:"property_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	propertyID, err := parseOptionalSnowflakeID(query.PropertyID)
	if err != nil {
		AbortWithError(c, newValidationError("property_id", "invalid_property_id", "invalid property_id"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&offerdomain.Offer{}).
		Scopes(tenant.Scope(identity))
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if propertyID != nil {
		stmt = stmt.Where("property_id = ?", *propertyID)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var offers []offerdomain.Offer
	err = page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&offers).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      offers,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetOfferByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	offer, err := s.findOffer(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": offer})
}

type updateOfferRequest struct {
	Status     *string  `json:"status"`
	Amount     *float64 `json:"amount"`
	Conditions *string  `json:"conditions"`
	Notes      *string  `json:"notes"`
}

// UpdateOffer applies status transitions. Accepting an offer does not touch
// the property's other offers; they are resolved one by one.
func (s *Server) UpdateOffer(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	offer, err := s.findOffer(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !offerdomain.ValidStatus(status) {
			AbortWithError(c, offerdomain.ErrInvalidStatus)
			return
		}
		offer.Status = status
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			AbortWithError(c, offerdomain.ErrInvalidAmount)
			return
		}
		offer.Amount = *req.Amount
	}
	if req.Conditions != nil {
		offer.Conditions = *req.Conditions
	}
	if req.Notes != nil {
		offer.Notes = *req.Notes
	}
	offer.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(offer).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": offer})
}

func (s *Server) DeleteOffer(c *gin.Context) {
	identity, _ := identityFrom(c)

	offer, err := s.findOffer(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&offerdomain.Offer{}, "id = ?", offer.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findOffer(c *gin.Context, identity tenant.Identity) (*offerdomain.Offer, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, offerdomain.ErrNotFound
	}

	var offer offerdomain.Offer
	err = s.db.WithContext(c.Request.Context()).First(&offer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, offerdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, offer.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &offer, nil
}

func isOfferValidationError(err error) bool {
	switch err {
	case offerdomain.ErrInvalidStatus,
		offerdomain.ErrInvalidAmount:
		return true
	default:
		return false
	}
}
