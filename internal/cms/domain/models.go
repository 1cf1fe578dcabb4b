package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Page struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Title           string       `gorm:"not null" json:"title"`
	Slug            string       `gorm:"not null;uniqueIndex:idx_pages_agency_slug" json:"slug"`
	Content         string       `json:"content,omitempty"`
	MetaTitle       string       `json:"meta_title,omitempty"`
	MetaDescription string       `json:"meta_description,omitempty"`
	IsPublished     bool         `gorm:"not null;default:false" json:"is_published"`
	AgencyID        snowflake.ID `gorm:"not null;index;uniqueIndex:idx_pages_agency_slug" json:"agency_id"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Post struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Title           string       `gorm:"not null" json:"title"`
	Slug            string       `gorm:"not null;uniqueIndex:idx_posts_agency_slug" json:"slug"`
	Content         string       `json:"content,omitempty"`
	Excerpt         string       `json:"excerpt,omitempty"`
	FeaturedImage   string       `json:"featured_image,omitempty"`
	MetaTitle       string       `json:"meta_title,omitempty"`
	MetaDescription string       `json:"meta_description,omitempty"`
	IsPublished     bool         `gorm:"not null;default:false" json:"is_published"`
	PublishedAt     *time.Time   `json:"published_at,omitempty"`
	AgencyID        snowflake.ID `gorm:"not null;index;uniqueIndex:idx_posts_agency_slug" json:"agency_id"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

var (
	ErrPageNotFound = errors.New("page_not_found")
	ErrPostNotFound = errors.New("post_not_found")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrSlugExists   = errors.New("slug_exists")
)
