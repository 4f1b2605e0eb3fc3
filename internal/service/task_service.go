package service

import (
	"context"
	"errors"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	ProjectID   string `json:"project_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssigneeID  string `json:"assignee_id"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *string `json:"assignee_id"`
	DueDate     *string `json:"due_date"`
}

type TaskResponse struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	AssigneeID   *string `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name,omitempty"`
	DueDate      *string `json:"due_date"`
	CreatedAt    string  `json:"created_at"`
}

type TaskService interface {
	CreateTask(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateTaskRequest) (TaskResponse, error)
	ListTasks(ctx context.Context, tenantID uuid.UUID, projectID, status string, page, limit int) ([]TaskResponse, int64, error)
	UpdateTask(ctx context.Context, tenantID uuid.UUID, id string, req UpdateTaskRequest) (TaskResponse, error)
	DeleteTask(ctx context.Context, tenantID uuid.UUID, id string) error
}

type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) TaskService {
	return &taskService{taskRepo: taskRepo, projectRepo: projectRepo}
}

func (s *taskService) CreateTask(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateTaskRequest) (TaskResponse, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return TaskResponse{}, apperr.NewValidation("project_id", "must be a valid uuid")
	}
	if _, err := s.projectRepo.FindByID(ctx, tenantID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, apperr.NewNotFound("project")
		}
		return TaskResponse{}, apperr.NewPersistence("project lookup", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}

	dueDate, err := parseOptionalDate(req.DueDate, "due_date")
	if err != nil {
		return TaskResponse{}, err
	}

	task := model.Task{
		TenantID:    tenantID,
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusTodo,
		Priority:    priority,
		AssigneeID:  parseActor(req.AssigneeID),
		DueDate:     dueDate,
		CreatedBy:   parseActor(actorID),
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return TaskResponse{}, apperr.NewPersistence("task creation", err)
	}
	return toTaskResponse(&task), nil
}

func (s *taskService) ListTasks(ctx context.Context, tenantID uuid.UUID, projectID, status string, page, limit int) ([]TaskResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	filter := repository.TaskListFilter{Status: status, Page: page, Limit: limit}
	if projectID != "" {
		parsed, err := uuid.Parse(projectID)
		if err != nil {
			return nil, 0, apperr.NewValidation("project_id", "must be a valid uuid")
		}
		filter.ProjectID = &parsed
	}

	tasks, total, err := s.taskRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, apperr.NewPersistence("task listing", err)
	}

	result := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, toTaskResponse(&tasks[i]))
	}
	return result, total, nil
}

func (s *taskService) UpdateTask(ctx context.Context, tenantID uuid.UUID, id string, req UpdateTaskRequest) (TaskResponse, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return TaskResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}
	task, err := s.taskRepo.FindByID(ctx, tenantID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, apperr.NewNotFound("task")
		}
		return TaskResponse{}, apperr.NewPersistence("task lookup", err)
	}

	if req.Status != nil {
		switch *req.Status {
		case model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone:
			task.Status = *req.Status
		default:
			return TaskResponse{}, apperr.NewValidation("status", "must be TODO, IN_PROGRESS, or DONE")
		}
	}
	if req.Priority != nil {
		switch *req.Priority {
		case model.TaskPriorityLow, model.TaskPriorityMedium, model.TaskPriorityHigh:
			task.Priority = *req.Priority
		default:
			return TaskResponse{}, apperr.NewValidation("priority", "must be LOW, MEDIUM, or HIGH")
		}
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssigneeID != nil {
		task.AssigneeID = parseActor(*req.AssigneeID)
	}
	if req.DueDate != nil {
		dueDate, parseErr := parseOptionalDate(*req.DueDate, "due_date")
		if parseErr != nil {
			return TaskResponse{}, parseErr
		}
		task.DueDate = dueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return TaskResponse{}, apperr.NewPersistence("task update", err)
	}
	return toTaskResponse(task), nil
}

func (s *taskService) DeleteTask(ctx context.Context, tenantID uuid.UUID, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return apperr.NewValidation("id", "must be a valid uuid")
	}
	if _, err := s.taskRepo.FindByID(ctx, tenantID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("task")
		}
		return apperr.NewPersistence("task lookup", err)
	}
	if err := s.taskRepo.Delete(ctx, tenantID, taskID); err != nil {
		return apperr.NewPersistence("task deletion", err)
	}
	return nil
}

func toTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID.String(),
		ProjectID:   t.ProjectID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.AssigneeID != nil {
		v := t.AssigneeID.String()
		resp.AssigneeID = &v
	}
	if t.Assignee != nil {
		resp.AssigneeName = t.Assignee.Name
	}
	if t.DueDate != nil {
		v := t.DueDate.Format("2006-01-02")
		resp.DueDate = &v
	}
	return resp
}
