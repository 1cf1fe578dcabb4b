package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/maisonlabs/courtier/internal/payment/domain"
	"github.com/maisonlabs/courtier/internal/sequence"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createPaymentRequest struct {
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	DueDate    string  `json:"due_date"`
	Method     string  `json:"method"`
	Reference  string  `json:"reference"`
	Notes      string  `json:"notes"`
	ContractID string  `json:"contract_id"`
	ClientID   string  `json:"client_id"`
	AgencyID   string  `json:"agency_id"`
}

func (s *Server) CreatePayment(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.Amount <= 0 {
		AbortWithError(c, paymentdomain.ErrInvalidAmount)
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = paymentdomain.StatusPending
	}
	if !paymentdomain.ValidStatus(status) {
		AbortWithError(c, paymentdomain.ErrInvalidStatus)
		return
	}

	contractID, err := parseOptionalSnowflakeID(req.ContractID)
	if err != nil {
		AbortWithError(c, newValidationError("contract_id", "invalid_contract_id", "invalid contract_id"))
		return
	}
	clientID, err := parseOptionalSnowflakeID(req.ClientID)
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client_id"))
		return
	}
	dueDate, err := parseOptionalTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	payment := &paymentdomain.Payment{
		ID:         s.genID.Generate(),
		Amount:     req.Amount,
		Type:       strings.TrimSpace(req.Type),
		Status:     status,
		DueDate:    dueDate,
		Method:     strings.TrimSpace(req.Method),
		Reference:  strings.TrimSpace(req.Reference),
		Notes:      req.Notes,
		UserID:     identity.UserID,
		ContractID: contractID,
		ClientID:   clientID,
		AgencyID:   agencyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == paymentdomain.StatusPaid {
		paid := s.clock.Now()
		payment.PaidDate = &paid
	}

	err = s.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		number, err := sequence.Next(c.Request.Context(), tx, sequence.PrefixPayment, agencyID)
		if err != nil {
			return err
		}
		payment.PaymentNumber = number
		return tx.Create(payment).Error
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": payment})
}

func (s *Server) ListPayments(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Status  string `form:"status"`
		DueFrom string `form:"due_from"`
		DueTo   string `form:"due_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueFrom, err := parseOptionalTime(query.DueFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("due_from", "invalid_due_from", "invalid due_from"))
		return
	}
	dueTo, err := parseOptionalTime(query.DueTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_to", "invalid_due_to", "invalid due_to"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&paymentdomain.Payment{}).
		Scopes(tenant.Scope(identity))
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if dueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *dueFrom)
	}
	if dueTo != nil {
		stmt = stmt.Where("due_date <= ?", *dueTo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var payments []paymentdomain.Payment
	err = page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&payments).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      payments,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	payment, err := s.findPayment(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payment})
}

type updatePaymentRequest struct {
	Status    *string  `json:"status"`
	Amount    *float64 `json:"amount"`
	DueDate   *string  `json:"due_date"`
	Method    *string  `json:"method"`
	Reference *string  `json:"reference"`
	Notes     *string  `json:"notes"`
}

func (s *Server) UpdatePayment(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.findPayment(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !paymentdomain.ValidStatus(status) {
			AbortWithError(c, paymentdomain.ErrInvalidStatus)
			return
		}
		payment.Status = status
		// Moving to PAID stamps the payment date unless one was already
		// recorded.
		if status == paymentdomain.StatusPaid && payment.PaidDate == nil {
			paid := s.clock.Now()
			payment.PaidDate = &paid
		}
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			AbortWithError(c, paymentdomain.ErrInvalidAmount)
			return
		}
		payment.Amount = *req.Amount
	}
	if req.DueDate != nil {
		dueDate, err := parseOptionalTime(*req.DueDate, true)
		if err != nil {
			AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
			return
		}
		payment.DueDate = dueDate
	}
	if req.Method != nil {
		payment.Method = strings.TrimSpace(*req.Method)
	}
	if req.Reference != nil {
		payment.Reference = strings.TrimSpace(*req.Reference)
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	payment.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(payment).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payment})
}

func (s *Server) DeletePayment(c *gin.Context) {
	identity, _ := identityFrom(c)

	payment, err := s.findPayment(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&paymentdomain.Payment{}, "id = ?", payment.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findPayment(c *gin.Context, identity tenant.Identity) (*paymentdomain.Payment, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, paymentdomain.ErrNotFound
	}

	var payment paymentdomain.Payment
	err = s.db.WithContext(c.Request.Context()).First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, paymentdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, payment.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &payment, nil
}

func isPaymentValidationError(err error) bool {
	switch err {
	case paymentdomain.ErrInvalidStatus,
		paymentdomain.ErrInvalidAmount:
		return true
	default:
		return false
	}
}
