package repository

import (
	"context"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskListFilter struct {
	ProjectID  *uuid.UUID
	Status     string
	AssigneeID *uuid.UUID
	Page       int
	Limit      int
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, tenantID uuid.UUID, filter TaskListFilter) ([]model.Task, int64, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).First(&task, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, tenantID uuid.UUID, filter TaskListFilter) ([]model.Task, int64, error) {
	var tasks []model.Task
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if filter.ProjectID != nil {
			q = q.Where("project_id = ?", *filter.ProjectID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.AssigneeID != nil {
			q = q.Where("assignee_id = ?", *filter.AssigneeID)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Task{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := applyFilter(db.Preload("Assignee")).
		Order("created_at desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Task{}, "id = ? AND tenant_id = ?", id, tenantID).Error
}
