package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

func (s *Server) ListUsers(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Role     string `form:"role"`
		IsActive string `form:"is_active"`
		Search   string `form:"search"`
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
		Model(&userdomain.User{}).
		Scopes(tenant.Scope(identity))
	if role := strings.ToUpper(strings.TrimSpace(query.Role)); role != "" {
		if !userdomain.ValidRole(role) {
			AbortWithError(c, userdomain.ErrInvalidRole)
			return
		}
		stmt = stmt.Where("role = ?", role)
	}
	if isActive != nil {
		stmt = stmt.Where("is_active = ?", *isActive)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var users []userdomain.User
	err = page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&users).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      users,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetUserByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	user, err := s.findUser(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

func (s *Server) UpdateUser(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.findUser(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*req.Role))
		if !userdomain.ValidRole(role) {
			AbortWithError(c, userdomain.ErrInvalidRole)
			return
		}
		if role == userdomain.RoleSuperAdmin && !identity.SuperAdmin {
			AbortWithError(c, tenant.ErrForbidden)
			return
		}
		user.Role = role
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(user).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// DeactivateUser disables the account instead of deleting the row so history
// keeps its author.
func (s *Server) DeactivateUser(c *gin.Context) {
	identity, _ := identityFrom(c)

	user, err := s.findUser(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(c.Request.Context()).Save(user).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deactivated": true}})
}

func (s *Server) findUser(c *gin.Context, identity tenant.Identity) (*userdomain.User, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, userdomain.ErrNotFound
	}

	var user userdomain.User
	err = s.db.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrNotFound
		}
		return nil, err
	}

	var rowAgency = user.AgencyID
	if rowAgency == nil {
		if !identity.SuperAdmin {
			return nil, tenant.ErrForbidden
		}
		return &user, nil
	}
	if !tenant.CanAccess(identity, *rowAgency) {
		return nil, tenant.ErrForbidden
	}
	return &user, nil
}

func isUserValidationError(err error) bool {
	switch err {
	case userdomain.ErrInvalidEmail,
		userdomain.ErrInvalidRole:
		return true
	default:
		return false
	}
}
