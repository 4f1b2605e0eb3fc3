package repository

import (
	"context"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectListFilter struct {
	Status   string
	ClientID *uuid.UUID
	Page     int
	Limit    int
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Project, error)
	FindByIDWithClient(ctx context.Context, tenantID, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ProjectListFilter) ([]model.Project, int64, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByIDWithClient(ctx context.Context, tenantID, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := GetDB(ctx, r.db).Preload("Client").
		First(&project, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, tenantID uuid.UUID, filter ProjectListFilter) ([]model.Project, int64, error) {
	var projects []model.Project
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
		return q
	}

	if err := applyFilter(db.Model(&model.Project{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := applyFilter(db.Preload("Client")).
		Order("created_at desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Save(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Project{}, "id = ? AND tenant_id = ?", id, tenantID).Error
}
