package repository

import (
	"context"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Document, error)
	ListByProject(ctx context.Context, tenantID, projectID uuid.UUID, page, limit int) ([]model.Document, int64, error)
	Update(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := GetDB(ctx, r.db).First(&doc, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByProject(ctx context.Context, tenantID, projectID uuid.UUID, page, limit int) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := GetDB(ctx, r.db)
	cond := "tenant_id = ? AND project_id = ?"

	if err := db.Model(&model.Document{}).Where(cond, tenantID, projectID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where(cond, tenantID, projectID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Save(doc).Error
}

func (r *documentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Document{}, "id = ? AND tenant_id = ?", id, tenantID).Error
}
