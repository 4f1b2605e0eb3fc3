package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus is the closed set of lifecycle states for a quote. Status only
// moves along the edges in quoteTransitions; callers never write it directly.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusViewed   QuoteStatus = "VIEWED"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// QuoteType enum constants
const (
	QuoteTypeDesign       = "DESIGN"
	QuoteTypeConstruction = "CONSTRUCTION"
)

// quoteTransitions is the legal edge set of the lifecycle. ACCEPTED,
// REJECTED, and EXPIRED are terminal: no outgoing edges.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:  {QuoteStatusSent},
	QuoteStatusSent:   {QuoteStatusViewed, QuoteStatusAccepted, QuoteStatusRejected},
	QuoteStatusViewed: {QuoteStatusAccepted, QuoteStatusRejected},
}

// CanTransitionTo reports whether the edge s -> target exists.
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	for _, next := range quoteTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected || s == QuoteStatusExpired
}

// Quote is a priced proposal sent to a client. The tax_amount and
// final_amount columns are derived by the finance calculator; the quote
// service is the only writer, and the conversion flow is the only code path
// allowed to set project_id (exactly once).
type Quote struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client          *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProjectID       *uuid.UUID      `gorm:"type:uuid;index" json:"project_id"` // set on acceptance, immutable afterwards
	Project         *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Type            string          `gorm:"type:varchar(20);not null" json:"type"` // DESIGN, CONSTRUCTION
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	LineItems       string          `gorm:"type:jsonb" json:"line_items"` // opaque snapshot from the caller
	Terms           string          `gorm:"type:text" json:"terms"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount_amount"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"` // percentage 0..100
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax_amount"`
	FinalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"final_amount"`
	Status          QuoteStatus     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	ValidUntil      time.Time       `gorm:"type:date;not null" json:"valid_until"`
	RejectionReason string          `gorm:"type:text" json:"rejection_reason"` // non-empty only when REJECTED
	CreatedBy       *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	Creator         *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the quote's validity window has passed. There is
// no background job flipping rows to EXPIRED; expiry is observed at query
// time, and a quote already in a terminal state never counts as expired.
func (q *Quote) IsExpired(now time.Time) bool {
	if q.Status.IsTerminal() {
		return false
	}
	return q.ValidUntil.Before(now.Truncate(24 * time.Hour))
}

// EffectiveStatus is the status callers should display: the stored status,
// or EXPIRED when the validity window has lapsed on a non-terminal quote.
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.IsExpired(now) {
		return QuoteStatusExpired
	}
	return q.Status
}

// CanBeSent reports whether the send operation is currently legal.
func (q *Quote) CanBeSent(now time.Time) bool {
	return !q.IsExpired(now) && q.Status.CanTransitionTo(QuoteStatusSent)
}

// CanBeViewed reports whether the client-opened event may be recorded.
func (q *Quote) CanBeViewed(now time.Time) bool {
	return !q.IsExpired(now) && q.Status.CanTransitionTo(QuoteStatusViewed)
}

// CanBeAccepted reports whether acceptance is currently legal. A quote past
// its valid_until date cannot be accepted even if its stored status allows.
func (q *Quote) CanBeAccepted(now time.Time) bool {
	return !q.IsExpired(now) && q.Status.CanTransitionTo(QuoteStatusAccepted)
}

// CanBeRejected reports whether rejection is currently legal.
func (q *Quote) CanBeRejected(now time.Time) bool {
	return !q.IsExpired(now) && q.Status.CanTransitionTo(QuoteStatusRejected)
}
