package repository

import (
	"context"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, tpl *model.QuoteTemplate) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.QuoteTemplate, error)
	List(ctx context.Context, tenantID uuid.UUID, quoteType string, page, limit int) ([]model.QuoteTemplate, int64, error)
	Update(ctx context.Context, tpl *model.QuoteTemplate) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, tpl *model.QuoteTemplate) error {
	return GetDB(ctx, r.db).Create(tpl).Error
}

func (r *templateRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.QuoteTemplate, error) {
	var tpl model.QuoteTemplate
	if err := GetDB(ctx, r.db).First(&tpl, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context, tenantID uuid.UUID, quoteType string, page, limit int) ([]model.QuoteTemplate, int64, error) {
	var templates []model.QuoteTemplate
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if quoteType != "" {
			q = q.Where("type = ?", quoteType)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.QuoteTemplate{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := applyFilter(db).Order("name asc").Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

func (r *templateRepository) Update(ctx context.Context, tpl *model.QuoteTemplate) error {
	return GetDB(ctx, r.db).Save(tpl).Error
}

func (r *templateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.QuoteTemplate{}, "id = ? AND tenant_id = ?", id, tenantID).Error
}
