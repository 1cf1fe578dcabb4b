package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/maisonlabs/courtier/internal/auth/domain"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"gorm.io/gorm"
)

type verifyAgencyRequest struct {
	Code string `json:"code"`
}

// VerifyAgency is the first step of the login flow: the front door asks
// whether the agency code exists before showing the credential form. Unknown
// and inactive codes are indistinguishable.
func (s *Server) VerifyAgency(c *gin.Context) {
	var req verifyAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	agency, err := s.agencySvc.VerifyCode(c.Request.Context(), req.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"agency": gin.H{
		"id":   agency.ID,
		"code": agency.Code,
		"name": agency.Name,
	}})
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	AgencyCode string `json:"agencyCode"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:      req.Email,
		Password:   req.Password,
		AgencyCode: req.AgencyCode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	}})
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	AgencyID  string `json:"agency_id"`
}

func (s *Server) Register(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var agencyID *snowflake.ID
	if strings.TrimSpace(req.AgencyID) != "" {
		parsed, err := parseOptionalSnowflakeID(req.AgencyID)
		if err != nil {
			AbortWithError(c, newValidationError("agency_id", "invalid_agency_id", "invalid agency_id"))
			return
		}
		agencyID = parsed
	}

	user, err := s.authsvc.Register(c.Request.Context(), identity, authdomain.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		AgencyID:  agencyID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (s *Server) Me(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var user userdomain.User
	err := s.db.WithContext(c.Request.Context()).
		First(&user, "id = ?", identity.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}
