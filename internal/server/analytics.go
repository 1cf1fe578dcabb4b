package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/maisonlabs/courtier/internal/analytics/domain"
)

func (s *Server) dashboardRequest(c *gin.Context) (analyticsdomain.DashboardRequest, error) {
	req := analyticsdomain.DashboardRequest{
		Period: strings.ToLower(strings.TrimSpace(c.Query("period"))),
	}

	startDate, err := parseOptionalTime(c.Query("start_date"), false)
	if err != nil {
		return req, newValidationError("start_date", "invalid_start_date", "invalid start_date")
	}
	endDate, err := parseOptionalTime(c.Query("end_date"), true)
	if err != nil {
		return req, newValidationError("end_date", "invalid_end_date", "invalid end_date")
	}
	req.StartDate = startDate
	req.EndDate = endDate
	return req, nil
}

func (s *Server) GetDashboard(c *gin.Context) {
	identity, _ := identityFrom(c)

	req, err := s.dashboardRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	dashboard, err := s.analyticsSvc.Dashboard(c.Request.Context(), identity, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}

func (s *Server) GetOperationalDashboard(c *gin.Context) {
	identity, _ := identityFrom(c)

	dashboard, err := s.analyticsSvc.OperationalDashboard(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}

func (s *Server) GetRevenue(c *gin.Context) {
	identity, _ := identityFrom(c)

	req, err := s.dashboardRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.analyticsSvc.Revenue(c.Request.Context(), identity, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
