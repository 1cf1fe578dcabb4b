package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/maisonlabs/courtier/internal/document/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadDocument stores the uploaded bytes first, then the metadata row. If
// the row cannot be written the stored file is removed again.
func (s *Server) UploadDocument(c *gin.Context) {
	identity, _ := identityFrom(c)

	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, documentdomain.ErrInvalidFile)
		return
	}

	docType := strings.ToUpper(strings.TrimSpace(c.PostForm("type")))
	if docType == "" {
		docType = documentdomain.TypeOther
	}
	if !documentdomain.ValidType(docType) {
		AbortWithError(c, documentdomain.ErrInvalidType)
		return
	}

	propertyID, err := parseOptionalSnowflakeID(c.PostForm("property_id"))
	if err != nil {
		AbortWithError(c, newValidationError("property_id", "invalid_property_id", "invalid property_id"))
		return
	}
	contractID, err := parseOptionalSnowflakeID(c.PostForm("contract_id"))
	if err != nil {
		AbortWithError(c, newValidationError("contract_id", "invalid_contract_id", "invalid contract_id"))
		return
	}
	clientID, err := parseOptionalSnowflakeID(c.PostForm("client_id"))
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client_id"))
		return
	}

	agencyID, err := resolveAgencyID(identity, c.PostForm("agency_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer src.Close()

	filename, path, size, err := s.store.Save(agencyID, file.Filename, src)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	doc := &documentdomain.Document{
		ID:           s.genID.Generate(),
		Filename:     filename,
		OriginalName: file.Filename,
		Path:         path,
		MimeType:     file.Header.Get("Content-Type"),
		Size:         size,
		Type:         docType,
		Description:  c.PostForm("description"),
		UserID:       identity.UserID,
		PropertyID:   propertyID,
		ContractID:   contractID,
		ClientID:     clientID,
		AgencyID:     agencyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.WithContext(c.Request.Context()).Create(doc).Error; err != nil {
		if removeErr := s.store.Remove(path); removeErr != nil {
			s.log.Warn("orphan document upload", zap.String("path", path), zap.Error(removeErr))
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (s *Server) ListDocuments(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Type       string `form:"type"`
		PropertyID string `form:"property_id"`
		ContractID string `form:"contract_id"`
		ClientID   string `form:"client_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&documentdomain.Document{}).
		Scopes(tenant.Scope(identity))
	if docType := strings.ToUpper(strings.TrimSpace(query.Type)); docType != "" {
		stmt = stmt.Where("type = ?", docType)
	}
	for _, ref := range []struct {
		column string
		value  string
	}{
		{"property_id", query.PropertyID},
		{"contract_id", query.ContractID},
		{"client_id", query.ClientID},
	} {
		id, err := parseOptionalSnowflakeID(ref.value)
		if err != nil {
			AbortWithError(c, newValidationError(ref.column, "invalid_"+ref.column, "invalid "+ref.column))
			return
		}
		if id != nil {
			stmt = stmt.Where(ref.column+" = ?", *id)
		}
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var docs []documentdomain.Document
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&docs).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      docs,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetDocumentByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	doc, err := s.findDocument(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

func (s *Server) DownloadDocument(c *gin.Context) {
	identity, _ := identityFrom(c)

	doc, err := s.findDocument(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.store.Open(doc.Path)
	if err != nil {
		AbortWithError(c, documentdomain.ErrNotFound)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.OriginalName+`"`)
	if doc.MimeType != "" {
		c.Header("Content-Type", doc.MimeType)
	}
	c.DataFromReader(http.StatusOK, doc.Size, doc.MimeType, reader, nil)
}

// DeleteDocument removes the row first; the file is unlinked only once the
// delete stuck. A failed unlink leaves an orphan file, not a dangling row.
func (s *Server) DeleteDocument(c *gin.Context) {
	identity, _ := identityFrom(c)

	doc, err := s.findDocument(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&documentdomain.Document{}, "id = ?", doc.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.store.Remove(doc.Path)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findDocument(c *gin.Context, identity tenant.Identity) (*documentdomain.Document, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, documentdomain.ErrNotFound
	}

	var doc documentdomain.Document
	err = s.db.WithContext(c.Request.Context()).First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, documentdomain.ErrNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, doc.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &doc, nil
}

func isDocumentValidationError(err error) bool {
	switch err {
	case documentdomain.ErrInvalidType,
		documentdomain.ErrInvalidFile:
		return true
	default:
		return false
	}
}
