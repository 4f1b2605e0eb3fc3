package repository

import (
	"context"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteListFilter narrows the quote listing.
type QuoteListFilter struct {
	Status   model.QuoteStatus
	ClientID *uuid.UUID
	Type     string
	Page     int
	Limit    int
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Quote, error)
	FindByIDWithRelations(ctx context.Context, tenantID, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, filter QuoteListFilter) ([]model.Quote, int64, error)
	Update(ctx context.Context, quote *model.Quote) error
	// UpdateStatusFrom flips status (and the transition-owned columns) only
	// if the row still holds expected. Returns the number of rows written:
	// 0 means another actor moved the quote first.
	UpdateStatusFrom(ctx context.Context, quote *model.Quote, expected model.QuoteStatus) (int64, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).First(&quote, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) FindByIDWithRelations(ctx context.Context, tenantID, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Project").
		First(&quote, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, tenantID uuid.UUID, filter QuoteListFilter) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.ClientID != nil {
			q = q.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Quote{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := applyFilter(db.Preload("Client")).
		Order("created_at desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&quotes).Error
	if err != nil {
		return nil, 0, err
	}

	return quotes, total, nil
}

func (r *quoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Save(quote).Error
}

func (r *quoteRepository) UpdateStatusFrom(ctx context.Context, quote *model.Quote, expected model.QuoteStatus) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Quote{}).
		Where("id = ? AND tenant_id = ? AND status = ?", quote.ID, quote.TenantID, expected).
		Updates(map[string]interface{}{
			"status":           quote.Status,
			"project_id":       quote.ProjectID,
			"rejection_reason": quote.RejectionReason,
		})
	return res.RowsAffected, res.Error
}

func (r *quoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Quote{}, "id = ? AND tenant_id = ?", id, tenantID).Error
}
