package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"
	"buildflow/pkg/finance"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateQuoteRequest struct {
	ClientID       string `json:"client_id" binding:"required"`
	ProjectID      string `json:"project_id"`  // optional: quote for an existing project
	TemplateID     string `json:"template_id"` // optional: prefill from a quote template
	Type           string `json:"type" binding:"omitempty,oneof=DESIGN CONSTRUCTION"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	LineItems      string `json:"line_items"` // opaque JSON snapshot
	Terms          string `json:"terms"`
	TotalAmount    string `json:"total_amount" binding:"required"`
	DiscountAmount string `json:"discount_amount"` // optional, defaults to 0
	TaxRate        string `json:"tax_rate"`        // percentage 0..100, defaults to 0
	ValidUntil     string `json:"valid_until"`     // YYYY-MM-DD; defaults to 30 days out
}

// UpdateQuoteRequest edits a DRAFT quote. Changing any of the three driving
// monetary fields recomputes tax_amount and final_amount; the derived
// columns are never accepted from the caller.
type UpdateQuoteRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	LineItems      *string `json:"line_items"`
	Terms          *string `json:"terms"`
	TotalAmount    *string `json:"total_amount"`
	DiscountAmount *string `json:"discount_amount"`
	TaxRate        *string `json:"tax_rate"`
	ValidUntil     *string `json:"valid_until"`
}

type QuoteFilter struct {
	Status   string
	ClientID string
	Type     string
	Page     int
	Limit    int
}

type QuoteResponse struct {
	ID              string  `json:"id"`
	TenantID        string  `json:"tenant_id"`
	ClientID        string  `json:"client_id"`
	ClientName      string  `json:"client_name,omitempty"`
	ProjectID       *string `json:"project_id"`
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	LineItems       string  `json:"line_items"`
	Terms           string  `json:"terms"`
	TotalAmount     string  `json:"total_amount"`
	DiscountAmount  string  `json:"discount_amount"`
	TaxRate         string  `json:"tax_rate"`
	TaxAmount       string  `json:"tax_amount"`
	FinalAmount     string  `json:"final_amount"`
	Status          string  `json:"status"`
	ValidUntil      string  `json:"valid_until"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedBy       *string `json:"created_by"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// --- Interface ---

type QuoteService interface {
	CreateQuote(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateQuoteRequest) (QuoteResponse, error)
	GetQuote(ctx context.Context, tenantID uuid.UUID, id string) (QuoteResponse, error)
	ListQuotes(ctx context.Context, tenantID uuid.UUID, filter QuoteFilter) ([]QuoteResponse, int64, error)
	UpdateQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string, req UpdateQuoteRequest) (QuoteResponse, error)
	DeleteQuote(ctx context.Context, tenantID uuid.UUID, id string) error

	SendQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (QuoteResponse, error)
	MarkQuoteViewed(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (QuoteResponse, error)
	AcceptQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (QuoteResponse, error)
	RejectQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string, reason string) (QuoteResponse, error)
}

// EventSink receives transition events for realtime consumers. The websocket
// hub implements it; a nil sink disables broadcasting.
type EventSink interface {
	BroadcastJSON(v interface{})
}

// QuoteEvent is the payload broadcast on every successful transition.
type QuoteEvent struct {
	TenantID   string `json:"tenant_id"`
	QuoteID    string `json:"quote_id"`
	ActorID    string `json:"actor_id,omitempty"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Reason     string `json:"reason,omitempty"`
	ProjectID  string `json:"project_id,omitempty"`
}

type quoteService struct {
	quoteRepo   repository.QuoteRepository
	projectRepo repository.ProjectRepository
	clientRepo  repository.ClientRepository
	tplRepo     repository.TemplateRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	events      EventSink
	now         func() time.Time
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	projectRepo repository.ProjectRepository,
	clientRepo repository.ClientRepository,
	tplRepo repository.TemplateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventSink,
) QuoteService {
	return &quoteService{
		quoteRepo:   quoteRepo,
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		tplRepo:     tplRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		events:      events,
		now:         time.Now,
	}
}

// --- Creation / editing ---

func (s *quoteService) CreateQuote(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateQuoteRequest) (QuoteResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return QuoteResponse{}, apperr.NewValidation("client_id", "must be a valid uuid")
	}
	if _, err := s.clientRepo.FindByID(ctx, tenantID, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QuoteResponse{}, apperr.NewNotFound("client")
		}
		return QuoteResponse{}, apperr.NewPersistence("client lookup", err)
	}

	var projectID *uuid.UUID
	if req.ProjectID != "" {
		parsed, parseErr := uuid.Parse(req.ProjectID)
		if parseErr != nil {
			return QuoteResponse{}, apperr.NewValidation("project_id", "must be a valid uuid")
		}
		if _, findErr := s.projectRepo.FindByID(ctx, tenantID, parsed); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return QuoteResponse{}, apperr.NewNotFound("project")
			}
			return QuoteResponse{}, apperr.NewPersistence("project lookup", findErr)
		}
		projectID = &parsed
	}

	// Template prefill: explicit request fields win over template defaults.
	if req.TemplateID != "" {
		tplID, parseErr := uuid.Parse(req.TemplateID)
		if parseErr != nil {
			return QuoteResponse{}, apperr.NewValidation("template_id", "must be a valid uuid")
		}
		tpl, tplErr := s.tplRepo.FindByID(ctx, tenantID, tplID)
		if tplErr != nil {
			if errors.Is(tplErr, gorm.ErrRecordNotFound) {
				return QuoteResponse{}, apperr.NewNotFound("quote template")
			}
			return QuoteResponse{}, apperr.NewPersistence("template lookup", tplErr)
		}
		if req.Type == "" {
			req.Type = tpl.Type
		}
		if req.Title == "" {
			req.Title = tpl.Title
		}
		if req.Description == "" {
			req.Description = tpl.Description
		}
		if req.LineItems == "" {
			req.LineItems = tpl.LineItems
		}
		if req.Terms == "" {
			req.Terms = tpl.Terms
		}
		if req.TaxRate == "" {
			req.TaxRate = tpl.DefaultTaxRate.String()
		}
		if req.DiscountAmount == "" {
			req.DiscountAmount = tpl.DefaultDiscount.String()
		}
		if req.ValidUntil == "" {
			req.ValidUntil = s.now().AddDate(0, 0, tpl.ValidityDays).Format("2006-01-02")
		}
	}

	if req.Type == "" {
		return QuoteResponse{}, apperr.NewValidation("type", "is required")
	}
	if req.Title == "" {
		return QuoteResponse{}, apperr.NewValidation("title", "is required")
	}

	total, discount, taxRate, err := parseMonetaryInputs(req.TotalAmount, req.DiscountAmount, req.TaxRate)
	if err != nil {
		return QuoteResponse{}, err
	}

	breakdown, err := finance.Compute(total, discount, taxRate)
	if err != nil {
		return QuoteResponse{}, err
	}

	validUntil := s.now().AddDate(0, 0, 30)
	if req.ValidUntil != "" {
		validUntil, err = time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			return QuoteResponse{}, apperr.NewValidation("valid_until", "must be a date in YYYY-MM-DD format")
		}
	}

	quote := model.Quote{
		TenantID:       tenantID,
		ClientID:       clientID,
		ProjectID:      projectID,
		Type:           req.Type,
		Title:          req.Title,
		Description:    req.Description,
		LineItems:      req.LineItems,
		Terms:          req.Terms,
		TotalAmount:    total.Round(2),
		DiscountAmount: discount.Round(2),
		TaxRate:        taxRate,
		TaxAmount:      breakdown.TaxAmount,
		FinalAmount:    breakdown.FinalAmount,
		Status:         model.QuoteStatusDraft,
		ValidUntil:     validUntil,
		CreatedBy:      parseActor(actorID),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.quoteRepo.Create(txCtx, &quote); createErr != nil {
			return apperr.NewPersistence("quote creation", createErr)
		}
		return s.writeAudit(txCtx, &quote, parseActor(actorID), model.ActionCreateQuote, map[string]interface{}{
			"final_amount": quote.FinalAmount.StringFixed(2),
		})
	})
	if err != nil {
		return QuoteResponse{}, asTypedErr("quote creation", err)
	}

	return s.toResponse(&quote), nil
}

func (s *quoteService) UpdateQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string, req UpdateQuoteRequest) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}

	var quote *model.Quote
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		q, findErr := s.quoteRepo.FindByID(txCtx, tenantID, quoteID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("quote")
			}
			return apperr.NewPersistence("quote lookup", findErr)
		}

		if q.Status != model.QuoteStatusDraft {
			return apperr.NewConflict(fmt.Sprintf("only DRAFT quotes can be edited, status is %s", q.Status))
		}

		if req.Title != nil {
			q.Title = *req.Title
		}
		if req.Description != nil {
			q.Description = *req.Description
		}
		if req.LineItems != nil {
			q.LineItems = *req.LineItems
		}
		if req.Terms != nil {
			q.Terms = *req.Terms
		}
		if req.ValidUntil != nil {
			parsed, parseErr := time.Parse("2006-01-02", *req.ValidUntil)
			if parseErr != nil {
				return apperr.NewValidation("valid_until", "must be a date in YYYY-MM-DD format")
			}
			q.ValidUntil = parsed
		}

		// Recompute derived amounts whenever a driving field changes.
		if req.TotalAmount != nil || req.DiscountAmount != nil || req.TaxRate != nil {
			totalStr := q.TotalAmount.String()
			discountStr := q.DiscountAmount.String()
			rateStr := q.TaxRate.String()
			if req.TotalAmount != nil {
				totalStr = *req.TotalAmount
			}
			if req.DiscountAmount != nil {
				discountStr = *req.DiscountAmount
			}
			if req.TaxRate != nil {
				rateStr = *req.TaxRate
			}

			total, discount, taxRate, parseErr := parseMonetaryInputs(totalStr, discountStr, rateStr)
			if parseErr != nil {
				return parseErr
			}
			breakdown, computeErr := finance.Compute(total, discount, taxRate)
			if computeErr != nil {
				return computeErr
			}
			q.TotalAmount = total.Round(2)
			q.DiscountAmount = discount.Round(2)
			q.TaxRate = taxRate
			q.TaxAmount = breakdown.TaxAmount
			q.FinalAmount = breakdown.FinalAmount
		}

		if updateErr := s.quoteRepo.Update(txCtx, q); updateErr != nil {
			return apperr.NewPersistence("quote update", updateErr)
		}
		quote = q
		return s.writeAudit(txCtx, q, parseActor(actorID), model.ActionUpdateQuote, nil)
	})
	if err != nil {
		return QuoteResponse{}, asTypedErr("quote update", err)
	}

	return s.toResponse(quote), nil
}

func (s *quoteService) GetQuote(ctx context.Context, tenantID uuid.UUID, id string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}

	quote, err := s.quoteRepo.FindByIDWithRelations(ctx, tenantID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QuoteResponse{}, apperr.NewNotFound("quote")
		}
		return QuoteResponse{}, apperr.NewPersistence("quote lookup", err)
	}

	return s.toResponse(quote), nil
}

func (s *quoteService) ListQuotes(ctx context.Context, tenantID uuid.UUID, filter QuoteFilter) ([]QuoteResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.QuoteListFilter{
		Status: model.QuoteStatus(filter.Status),
		Type:   filter.Type,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, apperr.NewValidation("client_id", "must be a valid uuid")
		}
		repoFilter.ClientID = &clientID
	}

	quotes, total, err := s.quoteRepo.List(ctx, tenantID, repoFilter)
	if err != nil {
		return nil, 0, apperr.NewPersistence("quote listing", err)
	}

	result := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		result = append(result, s.toResponse(&quotes[i]))
	}
	return result, total, nil
}

func (s *quoteService) DeleteQuote(ctx context.Context, tenantID uuid.UUID, id string) error {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return apperr.NewValidation("id", "must be a valid uuid")
	}

	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("quote")
		}
		return apperr.NewPersistence("quote lookup", err)
	}
	if quote.Status != model.QuoteStatusDraft {
		return apperr.NewConflict(fmt.Sprintf("only DRAFT quotes can be deleted, status is %s", quote.Status))
	}

	if err := s.quoteRepo.Delete(ctx, tenantID, quoteID); err != nil {
		return apperr.NewPersistence("quote deletion", err)
	}
	return nil
}

// --- Lifecycle transitions ---

func (s *quoteService) SendQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (QuoteResponse, error) {
	return s.transition(ctx, tenantID, id, actorID, model.QuoteStatusSent, "", model.ActionSendQuote)
}

func (s *quoteService) MarkQuoteViewed(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (QuoteResponse, error) {
	return s.transition(ctx, tenantID, id, actorID, model.QuoteStatusViewed, "", model.ActionViewQuote)
}

func (s *quoteService) RejectQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string, reason string) (QuoteResponse, error) {
	if reason == "" {
		return QuoteResponse{}, apperr.NewValidation("rejection_reason", "is required")
	}
	return s.transition(ctx, tenantID, id, actorID, model.QuoteStatusRejected, reason, model.ActionRejectQuote)
}

// transition moves a quote along one edge of the lifecycle inside a single
// transaction. The status flip carries an optimistic precondition on the
// prior status, so two racing actors cannot both win.
func (s *quoteService) transition(ctx context.Context, tenantID uuid.UUID, id string, actorID string, target model.QuoteStatus, reason string, action string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}
	actor := parseActor(actorID)

	var quote *model.Quote
	var prev model.QuoteStatus
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		q, findErr := s.quoteRepo.FindByID(txCtx, tenantID, quoteID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("quote")
			}
			return apperr.NewPersistence("quote lookup", findErr)
		}

		now := s.now()
		allowed := false
		switch target {
		case model.QuoteStatusSent:
			allowed = q.CanBeSent(now)
		case model.QuoteStatusViewed:
			allowed = q.CanBeViewed(now)
		case model.QuoteStatusRejected:
			allowed = q.CanBeRejected(now)
		}
		if !allowed {
			return apperr.NewIllegalTransition(string(q.EffectiveStatus(now)), string(target))
		}

		prev = q.Status
		q.Status = target
		if target == model.QuoteStatusRejected {
			q.RejectionReason = reason
		}

		rows, updateErr := s.quoteRepo.UpdateStatusFrom(txCtx, q, prev)
		if updateErr != nil {
			return apperr.NewPersistence("quote status update", updateErr)
		}
		if rows == 0 {
			// Another actor moved the quote between our read and write.
			return apperr.NewIllegalTransition(string(prev), string(target))
		}

		quote = q
		details := map[string]interface{}{"from": string(prev), "to": string(target)}
		if reason != "" {
			details["reason"] = reason
		}
		return s.writeAudit(txCtx, q, actor, action, details)
	})
	if err != nil {
		return QuoteResponse{}, asTypedErr("quote transition", err)
	}

	s.emitEvent(quote, actorID, prev, target, reason)
	return s.toResponse(quote), nil
}

// AcceptQuote performs acceptance and quote-to-project conversion as one
// atomic unit. If the quote has no linked project yet, a Project is created
// in PLANNING with the quote's final amount as budget; the status flip and
// the project creation commit together or not at all, so a quote is never
// left ACCEPTED without a project, and no orphan project survives a failure.
func (s *quoteService) AcceptQuote(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}
	actor := parseActor(actorID)

	var quote *model.Quote
	var prev model.QuoteStatus
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		q, findErr := s.quoteRepo.FindByID(txCtx, tenantID, quoteID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("quote")
			}
			return apperr.NewPersistence("quote lookup", findErr)
		}

		now := s.now()
		if !q.CanBeAccepted(now) {
			return apperr.NewIllegalTransition(string(q.EffectiveStatus(now)), string(model.QuoteStatusAccepted))
		}

		prev = q.Status
		converted := false
		if q.ProjectID == nil {
			project := &model.Project{
				TenantID:      q.TenantID,
				ClientID:      q.ClientID,
				Name:          q.Title,
				Description:   q.Description,
				Status:        model.ProjectStatusPlanning,
				Budget:        q.FinalAmount,
				SourceQuoteID: &q.ID,
				CreatedBy:     actor,
			}
			if createErr := s.projectRepo.Create(txCtx, project); createErr != nil {
				return apperr.NewPersistence("project creation", createErr)
			}
			q.ProjectID = &project.ID
			converted = true
		}

		q.Status = model.QuoteStatusAccepted
		rows, updateErr := s.quoteRepo.UpdateStatusFrom(txCtx, q, prev)
		if updateErr != nil {
			return apperr.NewPersistence("quote status update", updateErr)
		}
		if rows == 0 {
			return apperr.NewIllegalTransition(string(prev), string(model.QuoteStatusAccepted))
		}

		quote = q
		details := map[string]interface{}{"from": string(prev), "to": string(model.QuoteStatusAccepted)}
		if q.ProjectID != nil {
			details["project_id"] = q.ProjectID.String()
		}
		if auditErr := s.writeAudit(txCtx, q, actor, model.ActionAcceptQuote, details); auditErr != nil {
			return auditErr
		}
		if converted {
			return s.writeAudit(txCtx, q, actor, model.ActionConvertQuote, details)
		}
		return nil
	})
	if err != nil {
		return QuoteResponse{}, asTypedErr("quote acceptance", err)
	}

	s.emitEvent(quote, actorID, prev, model.QuoteStatusAccepted, "")
	return s.toResponse(quote), nil
}

// --- Helpers ---

func (s *quoteService) writeAudit(ctx context.Context, q *model.Quote, actor *uuid.UUID, action string, details map[string]interface{}) error {
	payload := ""
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}
	entry := &model.AuditLog{
		TenantID:   q.TenantID,
		UserID:     actor,
		Action:     action,
		EntityID:   q.ID.String(),
		EntityName: q.Title,
		Details:    payload,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return apperr.NewPersistence("audit log write", err)
	}
	return nil
}

func (s *quoteService) emitEvent(q *model.Quote, actorID string, from, to model.QuoteStatus, reason string) {
	log.Printf("quote %s: %s -> %s (tenant=%s actor=%s)", q.ID, from, to, q.TenantID, actorID)
	if s.events == nil {
		return
	}
	event := QuoteEvent{
		TenantID:   q.TenantID.String(),
		QuoteID:    q.ID.String(),
		ActorID:    actorID,
		FromStatus: string(from),
		ToStatus:   string(to),
		Reason:     reason,
	}
	if q.ProjectID != nil {
		event.ProjectID = q.ProjectID.String()
	}
	s.events.BroadcastJSON(event)
}

func (s *quoteService) toResponse(q *model.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:              q.ID.String(),
		TenantID:        q.TenantID.String(),
		ClientID:        q.ClientID.String(),
		Type:            q.Type,
		Title:           q.Title,
		Description:     q.Description,
		LineItems:       q.LineItems,
		Terms:           q.Terms,
		TotalAmount:     q.TotalAmount.StringFixed(2),
		DiscountAmount:  q.DiscountAmount.StringFixed(2),
		TaxRate:         q.TaxRate.StringFixed(2),
		TaxAmount:       q.TaxAmount.StringFixed(2),
		FinalAmount:     q.FinalAmount.StringFixed(2),
		Status:          string(q.EffectiveStatus(s.now())),
		ValidUntil:      q.ValidUntil.Format("2006-01-02"),
		RejectionReason: q.RejectionReason,
		CreatedAt:       q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       q.UpdatedAt.Format(time.RFC3339),
	}
	if q.Client != nil {
		resp.ClientName = q.Client.Name
	}
	if q.ProjectID != nil {
		v := q.ProjectID.String()
		resp.ProjectID = &v
	}
	if q.CreatedBy != nil {
		v := q.CreatedBy.String()
		resp.CreatedBy = &v
	}
	return resp
}

func parseMonetaryInputs(totalStr, discountStr, rateStr string) (total, discount, rate decimal.Decimal, err error) {
	total, err = decimal.NewFromString(totalStr)
	if err != nil {
		return total, discount, rate, apperr.NewValidation("total_amount", "must be a decimal number")
	}

	discount = decimal.Zero
	if discountStr != "" {
		discount, err = decimal.NewFromString(discountStr)
		if err != nil {
			return total, discount, rate, apperr.NewValidation("discount_amount", "must be a decimal number")
		}
	}

	rate = decimal.Zero
	if rateStr != "" {
		rate, err = decimal.NewFromString(rateStr)
		if err != nil {
			return total, discount, rate, apperr.NewValidation("tax_rate", "must be a decimal number")
		}
	}
	return total, discount, rate, nil
}

func parseActor(actorID string) *uuid.UUID {
	if actorID == "" {
		return nil
	}
	parsed, err := uuid.Parse(actorID)
	if err != nil {
		return nil
	}
	return &parsed
}

// asTypedErr keeps already-typed errors as-is and wraps everything else
// (commit failures included) as a persistence error.
func asTypedErr(op string, err error) error {
	if apperr.IsValidation(err) || apperr.IsIllegalTransition(err) ||
		apperr.IsNotFound(err) || apperr.IsConflict(err) || apperr.IsPersistence(err) {
		return err
	}
	return apperr.NewPersistence(op, err)
}
