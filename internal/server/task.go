package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	taskdomain "github.com/maisonlabs/courtier/internal/task/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	ClientID    string `json:"client_id"`
	PropertyID  string `json:"property_id"`
	ContractID  string `json:"contract_id"`
	AgencyID    string `json:"agency_id"`
}

func (s *Server) CreateTask(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		AbortWithError(c, taskdomain.ErrInvalidTitle)
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = taskdomain.StatusPending
	}
	if !taskdomain.ValidStatus(status) {
		AbortWithError(c, taskdomain.ErrInvalidStatus)
		return
	}
	priority := strings.ToUpper(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = taskdomain.PriorityMedium
	}
	if !taskdomain.ValidPriority(priority) {
		AbortWithError(c, taskdomain.ErrInvalidPriority)
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
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
	contractID, err := parseOptionalSnowflakeID(req.ContractID)
	if err != nil {
		AbortWithError(c, newValidationError("contract_id", "invalid_contract_id", "invalid contract_id"))
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	task := &taskdomain.Task{
		ID:          s.genID.Generate(),
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		UserID:      identity.UserID,
		ClientID:    clientID,
		PropertyID:  propertyID,
		ContractID:  contractID,
		AgencyID:    agencyID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(c.Request.Context()).Create(task).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": task})
}

func (s *Server) ListTasks(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Status   string `form:"status"`
		Priority string `form:"priority"`
		DueFrom  string `form:"due_from"`
		DueTo    string `form:"due_to"`
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
		Model(&taskdomain.Task{}).
		Scopes(tenant.Scope(identity))
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if priority := strings.ToUpper(strings.TrimSpace(query.Priority)); priority != "" {
		stmt = stmt.Where("priority = ?", priority)
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
	var tasks []taskdomain.Task
	err = page.Apply(stmt).
		Order("due_date asc, id desc").
		Find(&tasks).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      tasks,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetTaskByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	task, err := s.findTask(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func (s *Server) UpdateTask(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	task, err := s.findTask(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			AbortWithError(c, taskdomain.ErrInvalidTitle)
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !taskdomain.ValidStatus(status) {
			AbortWithError(c, taskdomain.ErrInvalidStatus)
			return
		}
		task.Status = status
	}
	if req.Priority != nil {
		priority := strings.ToUpper(strings.TrimSpace(*req.Priority))
		if !taskdomain.ValidPriority(priority) {
			AbortWithError(c, taskdomain.ErrInvalidPriority)
			return
		}
		task.Priority = priority
	}
	if req.DueDate != nil {
		dueDate, err := parseOptionalTime(*req.DueDate, true)
		if err != nil {
			AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
			return
		}
		task.DueDate = dueDate
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(task).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) DeleteTask(c *gin.Context) {
	identity, _ := identityFrom(c)

	task, err := s.findTask(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&taskdomain.Task{}, "id = ?", task.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findTask(c *gin.Context, identity tenant.Identity) (*taskdomain.Task, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, taskdomain.ErrNotFound
	}

	var task taskdomain.Task
	err = s.db.WithContext(c.Request.Context()).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, task.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &task, nil
}

func isTaskValidationError(err error) bool {
	switch err {
	case taskdomain.ErrInvalidTitle,
		taskdomain.ErrInvalidStatus,
		taskdomain.ErrInvalidPriority:
		return true
	default:
		return false
	}
}
