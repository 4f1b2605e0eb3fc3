package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientType enum constants
const (
	ClientTypeIndividual = "INDIVIDUAL"
	ClientTypeCompany    = "COMPANY"
)

// Client is a customer a tenant sends quotes to and runs projects for.
type Client struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Type          string         `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'" json:"type"` // INDIVIDUAL, COMPANY
	CompanyName   string         `gorm:"type:varchar(255)" json:"company_name"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Phone         string         `gorm:"type:varchar(20)" json:"phone"`
	Address       string         `gorm:"type:text" json:"address"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
