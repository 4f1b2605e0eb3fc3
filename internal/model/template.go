package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteTemplate is a reusable starting point for new quotes: a titled
// line-item snapshot plus default rates. Creating a quote from a template
// copies these fields through the finance calculator like any other input.
type QuoteTemplate struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Type            string          `gorm:"type:varchar(20);not null" json:"type"` // DESIGN, CONSTRUCTION
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	LineItems       string          `gorm:"type:jsonb" json:"line_items"` // opaque snapshot
	Terms           string          `gorm:"type:text" json:"terms"`
	DefaultTaxRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"default_tax_rate"`
	DefaultDiscount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"default_discount"`
	ValidityDays    int             `gorm:"not null;default:30" json:"validity_days"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (t *QuoteTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
