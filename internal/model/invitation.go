package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationStatus enum constants
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationRevoked  = "REVOKED"
)

// Invitation lets a tenant add a team member by email. The token is handed
// to an external delivery service; accepting a valid token creates the user.
type Invitation struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Email      string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Role       string     `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	Token      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	InvitedBy  *uuid.UUID `gorm:"type:uuid" json:"invited_by"`
	Inviter    *User      `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
