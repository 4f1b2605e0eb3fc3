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

type CreateProjectRequest struct {
	ClientID    string `json:"client_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	Address     string `json:"address"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Budget      *string `json:"budget"`
	Address     *string `json:"address"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type ProjectResponse struct {
	ID            string  `json:"id"`
	ClientID      string  `json:"client_id"`
	ClientName    string  `json:"client_name,omitempty"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	Budget        string  `json:"budget"`
	Address       string  `json:"address"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	SourceQuoteID *string `json:"source_quote_id"`
	CreatedAt     string  `json:"created_at"`
}

type ProjectService interface {
	CreateProject(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateProjectRequest) (ProjectResponse, error)
	GetProject(ctx context.Context, tenantID uuid.UUID, id string) (ProjectResponse, error)
	ListProjects(ctx context.Context, tenantID uuid.UUID, status, clientID string, page, limit int) ([]ProjectResponse, int64, error)
	UpdateProject(ctx context.Context, tenantID uuid.UUID, id string, req UpdateProjectRequest) (ProjectResponse, error)
	DeleteProject(ctx context.Context, tenantID uuid.UUID, id string) error
}

type projectService struct {
	projectRepo repository.ProjectRepository
	clientRepo  repository.ClientRepository
}

func NewProjectService(projectRepo repository.ProjectRepository, clientRepo repository.ClientRepository) ProjectService {
	return &projectService{projectRepo: projectRepo, clientRepo: clientRepo}
}

func validProjectStatus(status string) bool {
	switch status {
	case model.ProjectStatusPlanning, model.ProjectStatusInProgress, model.ProjectStatusOnHold,
		model.ProjectStatusCompleted, model.ProjectStatusCancelled:
		return true
	}
	return false
}

func (s *projectService) CreateProject(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateProjectRequest) (ProjectResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return ProjectResponse{}, apperr.NewValidation("client_id", "must be a valid uuid")
	}
	if _, err := s.clientRepo.FindByID(ctx, tenantID, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectResponse{}, apperr.NewNotFound("client")
		}
		return ProjectResponse{}, apperr.NewPersistence("client lookup", err)
	}

	budget := decimal.Zero
	if req.Budget != "" {
		budget, err = decimal.NewFromString(req.Budget)
		if err != nil {
			return ProjectResponse{}, apperr.NewValidation("budget", "must be a decimal number")
		}
		if budget.IsNegative() {
			return ProjectResponse{}, apperr.NewValidation("budget", "must not be negative")
		}
	}

	startDate, err := parseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		return ProjectResponse{}, err
	}
	endDate, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return ProjectResponse{}, err
	}

	project := model.Project{
		TenantID:    tenantID,
		ClientID:    clientID,
		Name:        req.Name,
		Description: req.Description,
		Status:      model.ProjectStatusPlanning,
		Budget:      budget.Round(2),
		Address:     req.Address,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedBy:   parseActor(actorID),
	}
	if err := s.projectRepo.Create(ctx, &project); err != nil {
		return ProjectResponse{}, apperr.NewPersistence("project creation", err)
	}
	return toProjectResponse(&project), nil
}

func (s *projectService) GetProject(ctx context.Context, tenantID uuid.UUID, id string) (ProjectResponse, error) {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return ProjectResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}
	project, err := s.projectRepo.FindByIDWithClient(ctx, tenantID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectResponse{}, apperr.NewNotFound("project")
		}
		return ProjectResponse{}, apperr.NewPersistence("project lookup", err)
	}
	return toProjectResponse(project), nil
}

func (s *projectService) ListProjects(ctx context.Context, tenantID uuid.UUID, status, clientID string, page, limit int) ([]ProjectResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	filter := repository.ProjectListFilter{Status: status, Page: page, Limit: limit}
	if clientID != "" {
		parsed, err := uuid.Parse(clientID)
		if err != nil {
			return nil, 0, apperr.NewValidation("client_id", "must be a valid uuid")
		}
		filter.ClientID = &parsed
	}

	projects, total, err := s.projectRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, apperr.NewPersistence("project listing", err)
	}

	result := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, toProjectResponse(&projects[i]))
	}
	return result, total, nil
}

func (s *projectService) UpdateProject(ctx context.Context, tenantID uuid.UUID, id string, req UpdateProjectRequest) (ProjectResponse, error) {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return ProjectResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}
	project, err := s.projectRepo.FindByID(ctx, tenantID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectResponse{}, apperr.NewNotFound("project")
		}
		return ProjectResponse{}, apperr.NewPersistence("project lookup", err)
	}

	if req.Status != nil {
		if !validProjectStatus(*req.Status) {
			return ProjectResponse{}, apperr.NewValidation("status", "unknown project status")
		}
		project.Status = *req.Status
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Budget != nil {
		budget, parseErr := decimal.NewFromString(*req.Budget)
		if parseErr != nil || budget.IsNegative() {
			return ProjectResponse{}, apperr.NewValidation("budget", "must be a non-negative decimal number")
		}
		project.Budget = budget.Round(2)
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.StartDate != nil {
		startDate, parseErr := parseOptionalDate(*req.StartDate, "start_date")
		if parseErr != nil {
			return ProjectResponse{}, parseErr
		}
		project.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, parseErr := parseOptionalDate(*req.EndDate, "end_date")
		if parseErr != nil {
			return ProjectResponse{}, parseErr
		}
		project.EndDate = endDate
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return ProjectResponse{}, apperr.NewPersistence("project update", err)
	}
	return toProjectResponse(project), nil
}

func (s *projectService) DeleteProject(ctx context.Context, tenantID uuid.UUID, id string) error {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return apperr.NewValidation("id", "must be a valid uuid")
	}
	project, err := s.projectRepo.FindByID(ctx, tenantID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("project")
		}
		return apperr.NewPersistence("project lookup", err)
	}
	if project.SourceQuoteID != nil {
		return apperr.NewConflict("projects created from an accepted quote cannot be deleted")
	}
	if err := s.projectRepo.Delete(ctx, tenantID, projectID); err != nil {
		return apperr.NewPersistence("project deletion", err)
	}
	return nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperr.NewValidation(field, "must be a date in YYYY-MM-DD format")
	}
	return &parsed, nil
}

func toProjectResponse(p *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID.String(),
		ClientID:    p.ClientID.String(),
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Budget:      p.Budget.StringFixed(2),
		Address:     p.Address,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.Client != nil {
		resp.ClientName = p.Client.Name
	}
	if p.StartDate != nil {
		v := p.StartDate.Format("2006-01-02")
		resp.StartDate = &v
	}
	if p.EndDate != nil {
		v := p.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	if p.SourceQuoteID != nil {
		v := p.SourceQuoteID.String()
		resp.SourceQuoteID = &v
	}
	return resp
}
