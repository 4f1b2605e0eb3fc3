package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=ADMIN MEMBER"`
}

type AcceptInvitationRequest struct {
	Token    string `json:"token" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type InvitationResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
	ExpiresAt   string  `json:"expires_at"`
	InviterName string  `json:"inviter_name,omitempty"`
	AcceptedAt  *string `json:"accepted_at"`
	CreatedAt   string  `json:"created_at"`
}

type InvitationService interface {
	CreateInvitation(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateInvitationRequest) (InvitationResponse, error)
	ListInvitations(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]InvitationResponse, int64, error)
	RevokeInvitation(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (InvitationResponse, error)
	AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*UserResponse, error)
}

type invitationService struct {
	invRepo   repository.InvitationRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewInvitationService(
	invRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) InvitationService {
	return &invitationService{
		invRepo:   invRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

const invitationTTL = 14 * 24 * time.Hour

func (s *invitationService) CreateInvitation(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateInvitationRequest) (InvitationResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleMember
	}

	if _, err := s.userRepo.FindByEmailInTenant(ctx, tenantID, req.Email); err == nil {
		return InvitationResponse{}, apperr.NewConflict("a user with this email already belongs to the tenant")
	}
	if _, err := s.invRepo.FindPendingByEmail(ctx, tenantID, req.Email); err == nil {
		return InvitationResponse{}, apperr.NewConflict("a pending invitation for this email already exists")
	}

	inv := model.Invitation{
		TenantID:  tenantID,
		Email:     req.Email,
		Role:      role,
		Token:     uuid.NewString(), // handed to the external delivery service
		Status:    model.InvitationPending,
		ExpiresAt: time.Now().Add(invitationTTL),
		InvitedBy: parseActor(actorID),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.invRepo.Create(txCtx, &inv); createErr != nil {
			return apperr.NewPersistence("invitation creation", createErr)
		}
		return s.writeInvitationAudit(txCtx, &inv, parseActor(actorID), model.ActionCreateInvitation)
	})
	if err != nil {
		return InvitationResponse{}, asTypedErr("invitation creation", err)
	}

	return toInvitationResponse(&inv), nil
}

func (s *invitationService) ListInvitations(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]InvitationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	invitations, total, err := s.invRepo.List(ctx, tenantID, status, page, limit)
	if err != nil {
		return nil, 0, apperr.NewPersistence("invitation listing", err)
	}

	result := make([]InvitationResponse, 0, len(invitations))
	for i := range invitations {
		result = append(result, toInvitationResponse(&invitations[i]))
	}
	return result, total, nil
}

func (s *invitationService) RevokeInvitation(ctx context.Context, tenantID uuid.UUID, id string, actorID string) (InvitationResponse, error) {
	invID, err := uuid.Parse(id)
	if err != nil {
		return InvitationResponse{}, apperr.NewValidation("id", "must be a valid uuid")
	}

	inv, err := s.invRepo.FindByID(ctx, tenantID, invID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvitationResponse{}, apperr.NewNotFound("invitation")
		}
		return InvitationResponse{}, apperr.NewPersistence("invitation lookup", err)
	}
	if inv.Status != model.InvitationPending {
		return InvitationResponse{}, apperr.NewConflict("only pending invitations can be revoked")
	}

	inv.Status = model.InvitationRevoked
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.invRepo.Update(txCtx, inv); updateErr != nil {
			return apperr.NewPersistence("invitation update", updateErr)
		}
		return s.writeInvitationAudit(txCtx, inv, parseActor(actorID), model.ActionRevokeInvitation)
	})
	if err != nil {
		return InvitationResponse{}, asTypedErr("invitation revocation", err)
	}

	return toInvitationResponse(inv), nil
}

// AcceptInvitation redeems a token and creates the member account in the
// same transaction the invitation is marked accepted, so a token can never
// be redeemed twice nor a user created against a dead invitation.
func (s *invitationService) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*UserResponse, error) {
	inv, err := s.invRepo.FindByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("invitation")
		}
		return nil, apperr.NewPersistence("invitation lookup", err)
	}
	if inv.Status != model.InvitationPending {
		return nil, apperr.NewConflict("invitation is no longer open")
	}
	if time.Now().After(inv.ExpiresAt) {
		return nil, apperr.NewConflict("invitation has expired")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.NewPersistence("password hashing", err)
	}

	user := model.User{
		TenantID: inv.TenantID,
		Name:     req.Name,
		Email:    inv.Email,
		Password: string(hashed),
		Role:     inv.Role,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.userRepo.Create(txCtx, &user); createErr != nil {
			return apperr.NewPersistence("user creation", createErr)
		}
		now := time.Now()
		inv.Status = model.InvitationAccepted
		inv.AcceptedAt = &now
		if updateErr := s.invRepo.Update(txCtx, inv); updateErr != nil {
			return apperr.NewPersistence("invitation update", updateErr)
		}
		return s.writeInvitationAudit(txCtx, inv, &user.ID, model.ActionAcceptInvitation)
	})
	if err != nil {
		return nil, asTypedErr("invitation acceptance", err)
	}

	return toUserResponse(&user), nil
}

func (s *invitationService) writeInvitationAudit(ctx context.Context, inv *model.Invitation, actor *uuid.UUID, action string) error {
	details, _ := json.Marshal(map[string]string{"email": inv.Email, "role": inv.Role})
	entry := &model.AuditLog{
		TenantID:   inv.TenantID,
		UserID:     actor,
		Action:     action,
		EntityID:   inv.ID.String(),
		EntityName: inv.Email,
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return apperr.NewPersistence("audit log write", err)
	}
	return nil
}

func toInvitationResponse(inv *model.Invitation) InvitationResponse {
	resp := InvitationResponse{
		ID:        inv.ID.String(),
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.Inviter != nil {
		resp.InviterName = inv.Inviter.Name
	}
	if inv.AcceptedAt != nil {
		v := inv.AcceptedAt.Format(time.RFC3339)
		resp.AcceptedAt = &v
	}
	return resp
}
