package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/maisonlabs/courtier/internal/tenant"
)

const contextIdentityKey = "identity"

// AuthRequired resolves the Bearer token into a tenant identity and threads it
// through both the gin context and the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, _, err := s.authsvc.Resolve(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextIdentityKey, identity)
		c.Request = c.Request.WithContext(tenant.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireCapability gates a route on the role capability table. AuthRequired
// must run first.
func (s *Server) RequireCapability(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), identity, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin gates the cross-tenant surface.
func (s *Server) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !identity.SuperAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) (tenant.Identity, bool) {
	value, exists := c.Get(contextIdentityKey)
	if !exists {
		return tenant.Identity{}, false
	}
	identity, ok := value.(tenant.Identity)
	return identity, ok
}

// resolveAgencyID returns the agency new rows are written under. Agency users
// always write into their own agency; a super admin must name one explicitly.
func resolveAgencyID(identity tenant.Identity, raw string) (snowflake.ID, error) {
	if identity.AgencyID != 0 {
		return identity.AgencyID, nil
	}
	if identity.SuperAdmin {
		parsed, err := parseOptionalSnowflakeID(raw)
		if err != nil || parsed == nil {
			return 0, newValidationError("agency_id", "invalid_agency_id", "invalid agency_id")
		}
		return *parsed, nil
	}
	return 0, tenant.ErrForbidden
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
