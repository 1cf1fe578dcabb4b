package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	contractdomain "github.com/maisonlabs/courtier/internal/contract/domain"
	"github.com/maisonlabs/courtier/internal/sequence"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createContractRequest struct {
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	SignedDate     string  `json:"signed_date"`
	Price          float64 `json:"price"`
	Commission     float64 `json:"commission"`
	CommissionRate float64 `json:"commission_rate"`
	Notes          string  `json:"notes"`
	PropertyID     string  `json:"property_id"`
	ClientID       string  `json:"client_id"`
	AgencyID       string  `json:"agency_id"`
}

func (s *Server) CreateContract(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	contractType := strings.ToUpper(strings.TrimSpace(req.Type))
	if !contractdomain.ValidType(contractType) {
		AbortWithError(c, contractdomain.ErrInvalidType)
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = contractdomain.StatusDraft
	}
	if !contractdomain.ValidStatus(status) {
		AbortWithError(c, contractdomain.ErrInvalidStatus)
		return
	}
	if req.Price <= 0 {
		AbortWithError(c, contractdomain.ErrInvalidPrice)
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
	endDate, err := parseOptionalTime(req.EndDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}
	signedDate, err := parseOptionalTime(req.SignedDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("signed_date", "invalid_signed_date", "invalid signed_date"))
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	commission := req.Commission
	if commission == 0 && req.CommissionRate > 0 {
		commission = req.Price * req.CommissionRate / 100
	}

	now := time.Now().UTC()
	contract := &contractdomain.Contract{
		ID:             s.genID.Generate(),
		Type:           contractType,
		Status:         status,
		StartDate:      startDate,
		EndDate:        endDate,
		SignedDate:     signedDate,
		Price:          req.Price,
		Commission:     commission,
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
		number, err := sequence.Next(c.Request.Context(), tx, sequence.PrefixContract, agencyID)
		if err != nil {
			return err
		}
		contract.ContractNumber = number
		return tx.Create(contract).Error
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": contract})
}

func (s *Server) ListContracts(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		Type       string `form:"type"`
		SignedFrom string `form:"signed_from"`
		SignedTo   string `form:"signed_to"`
		Search     string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	signedFrom, err := parseOptionalTime(query.SignedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("signed_from", "invalid_signed_from", "invalid signed_from"))
		return
	}
	signedTo, err := parseOptionalTime(query.SignedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("signed_to", "invalid_signed_to", "invalid signed_to"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&contractdomain.Contract{}).
		Scopes(tenant.Scope(identity))
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if contractType := strings.ToUpper(strings.TrimSpace(query.Type)); contractType != "" {
		stmt = stmt.Where("type = ?", contractType)
	}
	if signedFrom != nil {
		stmt = stmt.Where("signed_date >= ?", *signedFrom)
	}
	if signedTo != nil {
		stmt = stmt.Where("signed_date <= ?", *signedTo)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		stmt = stmt.Where("contract_number LIKE ?", "%"+strings.ToUpper(search)+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var contracts []contractdomain.Contract
	err = page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&contracts).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      contracts,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetContractByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	contract, err := s.findContract(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contract})
}

type updateContractRequest struct {
	Status         *string  `json:"status"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	SignedDate     *string  `json:"signed_date"`
	Price          *float64 `json:"price"`
	Commission     *float64 `json:"commission"`
	CommissionRate *float64 `json:"commission_rate"`
	Notes          *string  `json:"notes"`
}

func (s *Server) UpdateContract(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	contract, err := s.findContract(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !contractdomain.ValidStatus(status) {
			AbortWithError(c, contractdomain.ErrInvalidStatus)
			return
		}
		contract.Status = status
	}
	if req.StartDate != nil {
		startDate, err := parseOptionalTime(*req.StartDate, false)
		if err != nil {
			AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
			return
		}
		contract.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseOptionalTime(*req.EndDate, true)
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
			return
		}
		contract.EndDate = endDate
	}
	if req.SignedDate != nil {
		signedDate, err := parseOptionalTime(*req.SignedDate, false)
		if err != nil {
			AbortWithError(c, newValidationError("signed_date", "invalid_signed_date", "invalid signed_date"))
			return
		}
		contract.SignedDate = signedDate
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			AbortWithError(c, contractdomain.ErrInvalidPrice)
			return
		}
		contract.Price = *req.Price
	}
	if req.Commission != nil {
		contract.Commission = *req.Commission
	}
	if req.CommissionRate != nil {
		contract.CommissionRate = *req.CommissionRate
	}
	if req.Notes != nil {
		contract.Notes = *req.Notes
	}
	contract.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(contract).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contract})
}

func (s *Server) DeleteContract(c *gin.Context) {
	identity, _ := identityFrom(c)

	contract, err := s.findContract(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&contractdomain.Contract{}, "id = ?", contract.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findContract(c *gin.Context, identity tenant.Identity) (*contractdomain.Contract, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, contractdomain.ErrNotFound
	}

	var contract contractdomain.Contract
	err = s.db.WithContext(c.Request.Context()).First(&contract, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contractdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, contract.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &contract, nil
}

func isContractValidationError(err error) bool {
	switch err {
	case contractdomain.ErrInvalidType,
		contractdomain.ErrInvalidStatus,
		contractdomain.ErrInvalidPrice:
		return true
	default:
		return false
	}
}
