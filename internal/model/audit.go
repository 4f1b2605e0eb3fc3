package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateQuote  = "CREATE_QUOTE"
	ActionUpdateQuote  = "UPDATE_QUOTE"
	ActionSendQuote    = "SEND_QUOTE"
	ActionViewQuote    = "VIEW_QUOTE"
	ActionAcceptQuote  = "ACCEPT_QUOTE"
	ActionRejectQuote  = "REJECT_QUOTE"
	ActionConvertQuote = "CONVERT_QUOTE_TO_PROJECT"

	ActionCreateProject    = "CREATE_PROJECT"
	ActionUpdateProject    = "UPDATE_PROJECT"
	ActionCreateClient     = "CREATE_CLIENT"
	ActionCreateInvitation = "CREATE_INVITATION"
	ActionAcceptInvitation = "ACCEPT_INVITATION"
	ActionRevokeInvitation = "REVOKE_INVITATION"
)

// AuditLog tracks Who, What, and When for critical system changes. Quote
// lifecycle transitions always write one row carrying tenant, quote, actor,
// and the previous/new status.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nullable for system-initiated actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
