package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentCategory enum constants
const (
	DocCategoryContract = "CONTRACT"
	DocCategoryDrawing  = "DRAWING"
	DocCategoryPermit   = "PERMIT"
	DocCategoryPhoto    = "PHOTO"
	DocCategoryOther    = "OTHER"
)

// Document is the metadata record for a file attached to a project or
// client. Binary storage lives behind an external storage service; this
// table only tracks name, category, and linkage.
type Document struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Category    string     `gorm:"type:varchar(20);not null;default:'OTHER';index" json:"category"`
	StorageKey  string     `gorm:"type:varchar(500);not null" json:"storage_key"` // opaque key in the external store
	ContentType string     `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
