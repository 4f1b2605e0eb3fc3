package service

import (
	"context"
	"errors"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateTemplateRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=DESIGN CONSTRUCTION"`
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	LineItems       string `json:"line_items"`
	Terms           string `json:"terms"`
	DefaultTaxRate  string `json:"default_tax_rate"`
	DefaultDiscount string `json:"default_discount"`
	ValidityDays    int    `json:"validity_days"`
}

type TemplateResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	LineItems       string `json:"line_items"`
	Terms           string `json:"terms"`
	DefaultTaxRate  string `json:"default_tax_rate"`
	DefaultDiscount string `json:"default_discount"`
	ValidityDays    int    `json:"validity_days"`
	CreatedAt       string `json:"created_at"`
}

type TemplateService interface {
	CreateTemplate(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateTemplateRequest) (TemplateResponse, error)
	GetTemplate(ctx context.Context, tenantID uuid.UUID, id string) (TemplateResponse, error)
	ListTemplates(ctx context.Context, tenantID uuid.UUID, quoteType string, page, limit int) ([]TemplateResponse, int64, error)
	DeleteTemplate(ctx context.Context, tenantID uuid.UUID, id string) error
}

type templateService struct {
	repo repository.TemplateRepository
}

func NewTemplateService(repo repository.TemplateRepository) TemplateService {
	return &templateService{repo: repo}
}

func (s *templateService) CreateTemplate(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateTemplateRequest) (TemplateResponse, error) {
	taxRate := decimal.Zero
	if req.DefaultTaxRate != "" {
		parsed, err := decimal.NewFromString(req.DefaultTaxRate)
		if err != nil {
			return TemplateResponse{}, apperr.NewValidation("default_tax_rate", "must be a decimal number")
		}
		if parsed.IsNegative() || parsed.GreaterThan(decimal.NewFromInt(100)) {
			return TemplateResponse{}, apperr.NewValidation("default_tax_rate", "must be between 0 and 100")
		}
		taxRate = parsed
	}

	discount := decimal.Zero
	if req.DefaultDiscount != "" {
		parsed, err := decimal.NewFromString(req.DefaultDiscount)
		if err != nil || parsed.IsNegative() {
			return TemplateResponse{}, apperr.NewValidation("default_discount", "must be a non-negative decimal number")
		}
		discount = parsed
	}

	validityDays := req.ValidityDays
	if validityDays <= 0 {
		validityDays = 30
	}

	tpl := model.QuoteTemplate{
		TenantID:        tenantID,
		Name:            req.Name,
		Type:            req.Type,
		Title:           req.Title,
		Description:     req.Description,
		LineItems:       req.LineItems,
		Terms:           req.Terms,
		DefaultTaxRate:  taxRate,
		DefaultDiscount: discount.Round(2),
		ValidityDays:    validityDays,
		CreatedBy:       parseActor(actorID),
	}
	if err := s.repo.Create(ctx, &tpl); err != nil {
		return TemplateResponse{}, apperr.NewPersistence("template creation", err)
	}
	return toTemplateResponse(&tpl), nil
}

func (s *templateService) GetTemplate(ctx context.Context, tenantID uuid.UUID, id string) (TemplateResponse, error) {
	tplID, err := uuid.Parse(id)
	if err != nil {
		return TemplateResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}
	tpl, err := s.repo.FindByID(ctx, tenantID, tplID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TemplateResponse{}, apperr.NewNotFound("quote template")
		}
		return TemplateResponse{}, apperr.NewPersistence("template lookup", err)
	}
	return toTemplateResponse(tpl), nil
}

func (s *templateService) ListTemplates(ctx context.Context, tenantID uuid.UUID, quoteType string, page, limit int) ([]TemplateResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	templates, total, err := s.repo.List(ctx, tenantID, quoteType, page, limit)
	if err != nil {
		return nil, 0, apperr.NewPersistence("template listing", err)
	}

	result := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		result = append(result, toTemplateResponse(&templates[i]))
	}
	return result, total, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, tenantID uuid.UUID, id string) error {
	tplID, err := uuid.Parse(id)
	if err != nil {
		return apperr.NewValidation("id", "must be a valid uuid")
	}
	if _, err := s.repo.FindByID(ctx, tenantID, tplID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("quote template")
		}
		return apperr.NewPersistence("template lookup", err)
	}
	if err := s.repo.Delete(ctx, tenantID, tplID); err != nil {
		return apperr.NewPersistence("template deletion", err)
	}
	return nil
}

func toTemplateResponse(t *model.QuoteTemplate) TemplateResponse {
	return TemplateResponse{
		ID:              t.ID.String(),
		Name:            t.Name,
		Type:            t.Type,
		Title:           t.Title,
		Description:     t.Description,
		LineItems:       t.LineItems,
		Terms:           t.Terms,
		DefaultTaxRate:  t.DefaultTaxRate.StringFixed(2),
		DefaultDiscount: t.DefaultDiscount.StringFixed(2),
		ValidityDays:    t.ValidityDays,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
}
