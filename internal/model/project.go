package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectStatus enum constants
const (
	ProjectStatusPlanning   = "PLANNING"
	ProjectStatusInProgress = "IN_PROGRESS"
	ProjectStatusOnHold     = "ON_HOLD"
	ProjectStatusCompleted  = "COMPLETED"
	ProjectStatusCancelled  = "CANCELLED"
)

// Project is a construction or design engagement for a client. Projects are
// created directly, or by the quote conversion flow when a quote is accepted
// (in which case source_quote_id records the originating quote and the
// budget is seeded from its final amount).
type Project struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PLANNING';index" json:"status"`
	Budget        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"budget"`
	Address       string          `gorm:"type:text" json:"address"`
	StartDate     *time.Time      `gorm:"type:date" json:"start_date"`
	EndDate       *time.Time      `gorm:"type:date" json:"end_date"`
	SourceQuoteID *uuid.UUID      `gorm:"type:uuid;index" json:"source_quote_id"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
