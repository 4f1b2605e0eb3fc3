package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type RegisterTenantRequest struct {
	Name          string `json:"name" binding:"required"`
	Slug          string `json:"slug" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	OwnerName     string `json:"owner_name" binding:"required"`
	OwnerEmail    string `json:"owner_email" binding:"required,email"`
	OwnerPassword string `json:"owner_password" binding:"required,min=8"`
}

type UpdateTenantRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Plan    *string `json:"plan"`
}

type TenantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Plan      string `json:"plan"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type TenantService interface {
	RegisterTenant(ctx context.Context, req RegisterTenantRequest) (TenantResponse, error)
	GetTenant(ctx context.Context, tenantID uuid.UUID) (TenantResponse, error)
	UpdateTenant(ctx context.Context, tenantID uuid.UUID, req UpdateTenantRequest) (TenantResponse, error)
}

type tenantService struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	txManager  repository.TransactionManager
}

func NewTenantService(tenantRepo repository.TenantRepository, userRepo repository.UserRepository, txManager repository.TransactionManager) TenantService {
	return &tenantService{tenantRepo: tenantRepo, userRepo: userRepo, txManager: txManager}
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// RegisterTenant creates the organization and its OWNER account together;
// a tenant without an owner is useless, so the two commit as one unit.
func (s *tenantService) RegisterTenant(ctx context.Context, req RegisterTenantRequest) (TenantResponse, error) {
	if !slugRegex.MatchString(req.Slug) {
		return TenantResponse{}, apperr.NewValidation("slug", "must be lowercase letters, digits, and hyphens")
	}

	if _, err := s.tenantRepo.FindBySlug(ctx, req.Slug); err == nil {
		return TenantResponse{}, apperr.NewConflict("slug already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return TenantResponse{}, apperr.NewPersistence("slug lookup", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return TenantResponse{}, apperr.NewPersistence("password hashing", err)
	}

	tenant := model.Tenant{
		Name:    req.Name,
		Slug:    req.Slug,
		Plan:    model.PlanStarter,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.tenantRepo.Create(txCtx, &tenant); createErr != nil {
			return apperr.NewPersistence("tenant creation", createErr)
		}
		owner := model.User{
			TenantID: tenant.ID,
			Name:     req.OwnerName,
			Email:    req.OwnerEmail,
			Password: string(hashed),
			Role:     model.RoleOwner,
		}
		if createErr := s.userRepo.Create(txCtx, &owner); createErr != nil {
			return apperr.NewPersistence("owner creation", createErr)
		}
		return nil
	})
	if err != nil {
		return TenantResponse{}, asTypedErr("tenant registration", err)
	}

	return toTenantResponse(&tenant), nil
}

func (s *tenantService) GetTenant(ctx context.Context, tenantID uuid.UUID) (TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TenantResponse{}, apperr.NewNotFound("tenant")
		}
		return TenantResponse{}, apperr.NewPersistence("tenant lookup", err)
	}
	return toTenantResponse(tenant), nil
}

func (s *tenantService) UpdateTenant(ctx context.Context, tenantID uuid.UUID, req UpdateTenantRequest) (TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TenantResponse{}, apperr.NewNotFound("tenant")
		}
		return TenantResponse{}, apperr.NewPersistence("tenant lookup", err)
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.Email != nil {
		tenant.Email = *req.Email
	}
	if req.Phone != nil {
		tenant.Phone = *req.Phone
	}
	if req.Address != nil {
		tenant.Address = *req.Address
	}
	if req.Plan != nil {
		switch *req.Plan {
		case model.PlanStarter, model.PlanProfessional, model.PlanEnterprise:
			tenant.Plan = *req.Plan
		default:
			return TenantResponse{}, apperr.NewValidation("plan", "must be STARTER, PROFESSIONAL, or ENTERPRISE")
		}
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return TenantResponse{}, apperr.NewPersistence("tenant update", err)
	}
	return toTenantResponse(tenant), nil
}

func toTenantResponse(t *model.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Slug:      t.Slug,
		Plan:      t.Plan,
		Email:     t.Email,
		Phone:     t.Phone,
		Address:   t.Address,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}
