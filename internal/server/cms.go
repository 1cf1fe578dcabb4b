package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	cmsdomain "github.com/maisonlabs/courtier/internal/cms/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	"github.com/maisonlabs/courtier/pkg/db"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"gorm.io/gorm"
)

type createPageRequest struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Content         string `json:"content"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	IsPublished     bool   `json:"is_published"`
	AgencyID        string `json:"agency_id"`
}

func (s *Server) CreatePage(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		AbortWithError(c, cmsdomain.ErrInvalidTitle)
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pageSlug := strings.TrimSpace(req.Slug)
	if pageSlug == "" {
		pageSlug = title
	}
	pageSlug = slug.Make(pageSlug)

	now := time.Now().UTC()
	page := &cmsdomain.Page{
		ID:              s.genID.Generate(),
		Title:           title,
		Slug:            pageSlug,
		Content:         req.Content,
		MetaTitle:       strings.TrimSpace(req.MetaTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		IsPublished:     req.IsPublished,
		AgencyID:        agencyID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.db.WithContext(c.Request.Context()).Create(page).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			AbortWithError(c, cmsdomain.ErrSlugExists)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": page})
}

func (s *Server) ListPages(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		IsPublished string `form:"is_published"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isPublished, err := parseOptionalBool(query.IsPublished)
	if err != nil {
		AbortWithError(c, newValidationError("is_published", "invalid_is_published", "invalid is_published"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&cmsdomain.Page{}).
		Scopes(tenant.Scope(identity))
	if isPublished != nil {
		stmt = stmt.Where("is_published = ?", *isPublished)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var pages []cmsdomain.Page
	err = page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&pages).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      pages,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetPageByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	page, err := s.findPage(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": page})
}

type updatePageRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Content         *string `json:"content"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	IsPublished     *bool   `json:"is_published"`
}

func (s *Server) UpdatePage(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.findPage(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			AbortWithError(c, cmsdomain.ErrInvalidTitle)
			return
		}
		page.Title = title
	}
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		page.Slug = slug.Make(*req.Slug)
	}
	if req.Content != nil {
		page.Content = *req.Content
	}
	if req.MetaTitle != nil {
		page.MetaTitle = strings.TrimSpace(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		page.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}
	page.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(page).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			AbortWithError(c, cmsdomain.ErrSlugExists)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (s *Server) DeletePage(c *gin.Context) {
	identity, _ := identityFrom(c)

	page, err := s.findPage(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&cmsdomain.Page{}, "id = ?", page.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findPage(c *gin.Context, identity tenant.Identity) (*cmsdomain.Page, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, cmsdomain.ErrPageNotFound
	}

	var page cmsdomain.Page
	err = s.db.WithContext(c.Request.Context()).First(&page, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cmsdomain.ErrPageNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, page.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &page, nil
}

type createPostRequest struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Content         string `json:"content"`
	Excerpt         string `json:"excerpt"`
	FeaturedImage   string `json:"featured_image"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	IsPublished     bool   `json:"is_published"`
	AgencyID        string `json:"agency_id"`
}

func (s *Server) CreatePost(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		AbortWithError(c, cmsdomain.ErrInvalidTitle)
		return
	}

	agencyID, err := resolveAgencyID(identity, req.AgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	postSlug := strings.TrimSpace(req.Slug)
	if postSlug == "" {
		postSlug = title
	}
	postSlug = slug.Make(postSlug)

	now := time.Now().UTC()
	post := &cmsdomain.Post{
		ID:              s.genID.Generate(),
		Title:           title,
		Slug:            postSlug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		FeaturedImage:   strings.TrimSpace(req.FeaturedImage),
		MetaTitle:       strings.TrimSpace(req.MetaTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		IsPublished:     req.IsPublished,
		AgencyID:        agencyID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if post.IsPublished {
		publishedAt := s.clock.Now()
		post.PublishedAt = &publishedAt
	}

	if err := s.db.WithContext(c.Request.Context()).Create(post).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			AbortWithError(c, cmsdomain.ErrSlugExists)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": post})
}

func (s *Server) ListPosts(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		IsPublished string `form:"is_published"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isPublished, err := parseOptionalBool(query.IsPublished)
	if err != nil {
		AbortWithError(c, newValidationError("is_published", "invalid_is_published", "invalid is_published"))
		return
	}

	stmt := s.db.WithContext(c.Request.Context()).
		Model(&cmsdomain.Post{}).
		Scopes(tenant.Scope(identity))
	if isPublished != nil {
		stmt = stmt.Where("is_published = ?", *isPublished)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	page := query.Pagination.Normalize()
	var posts []cmsdomain.Post
	err = page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&posts).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":      posts,
		"pagination": pagination.BuildPageInfo(page, total),
	}})
}

func (s *Server) GetPostByID(c *gin.Context) {
	identity, _ := identityFrom(c)

	post, err := s.findPost(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": post})
}

type updatePostRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Content         *string `json:"content"`
	Excerpt         *string `json:"excerpt"`
	FeaturedImage   *string `json:"featured_image"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	IsPublished     *bool   `json:"is_published"`
}

func (s *Server) UpdatePost(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	post, err := s.findPost(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			AbortWithError(c, cmsdomain.ErrInvalidTitle)
			return
		}
		post.Title = title
	}
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		post.Slug = slug.Make(*req.Slug)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*req.FeaturedImage)
	}
	if req.MetaTitle != nil {
		post.MetaTitle = strings.TrimSpace(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		post.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}
	if req.IsPublished != nil {
		// First transition to published stamps the publication time once.
		if *req.IsPublished && post.PublishedAt == nil {
			publishedAt := s.clock.Now()
			post.PublishedAt = &publishedAt
		}
		post.IsPublished = *req.IsPublished
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(c.Request.Context()).Save(post).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			AbortWithError(c, cmsdomain.ErrSlugExists)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": post})
}

func (s *Server) DeletePost(c *gin.Context) {
	identity, _ := identityFrom(c)

	post, err := s.findPost(c, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Delete(&cmsdomain.Post{}, "id = ?", post.ID).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) findPost(c *gin.Context, identity tenant.Identity) (*cmsdomain.Post, error) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return nil, cmsdomain.ErrPostNotFound
	}

	var post cmsdomain.Post
	err = s.db.WithContext(c.Request.Context()).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cmsdomain.ErrPostNotFound
		}
		return nil, err
	}
	if !tenant.CanAccess(identity, post.AgencyID) {
		return nil, tenant.ErrForbidden
	}
	return &post, nil
}

func isCMSValidationError(err error) bool {
	switch err {
	case cmsdomain.ErrInvalidTitle,
		cmsdomain.ErrSlugExists:
		return true
	default:
		return false
	}
}
