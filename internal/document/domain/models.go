package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeContract    = "CONTRACT"
	TypeInvoice     = "INVOICE"
	TypePhoto       = "PHOTO"
	TypeIdentity    = "IDENTITY"
	TypePropertyDoc = "PROPERTY_DOC"
	TypeOther       = "OTHER"
)

type Document struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Filename     string        `gorm:"not null" json:"filename"`
	OriginalName string        `gorm:"not null" json:"original_name"`
	Path         string        `gorm:"not null" json:"-"`
	MimeType     string        `json:"mime_type,omitempty"`
	Size         int64         `json:"size"`
	Type         string        `gorm:"not null;default:OTHER;index" json:"type"`
	Description  string        `json:"description,omitempty"`
	UserID       snowflake.ID  `gorm:"not null;index" json:"user_id"`
	PropertyID   *snowflake.ID `gorm:"index" json:"property_id,omitempty"`
	ContractID   *snowflake.ID `gorm:"index" json:"contract_id,omitempty"`
	ClientID     *snowflake.ID `gorm:"index" json:"client_id,omitempty"`
	AgencyID     snowflake.ID  `gorm:"not null;index" json:"agency_id"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidType(value string) bool {
	switch value {
	case TypeContract, TypeInvoice, TypePhoto, TypeIdentity, TypePropertyDoc, TypeOther:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound    = errors.New("document_not_found")
	ErrInvalidType = errors.New("invalid_type")
	ErrInvalidFile = errors.New("invalid_file")
)
