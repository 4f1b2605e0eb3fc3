package repository

import (
	"context"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Invitation, error)
	FindByToken(ctx context.Context, token string) (*model.Invitation, error)
	FindPendingByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*model.Invitation, error)
	List(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]model.Invitation, int64, error)
	Update(ctx context.Context, inv *model.Invitation) error
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *model.Invitation) error {
	return GetDB(ctx, r.db).Create(inv).Error
}

func (r *invitationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Invitation, error) {
	var inv model.Invitation
	if err := GetDB(ctx, r.db).First(&inv, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByToken is deliberately not tenant-scoped: the invitee is not a tenant
// member yet, the token itself is the credential.
func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*model.Invitation, error) {
	var inv model.Invitation
	if err := GetDB(ctx, r.db).First(&inv, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) FindPendingByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*model.Invitation, error) {
	var inv model.Invitation
	err := GetDB(ctx, r.db).
		First(&inv, "tenant_id = ? AND email = ? AND status = ?", tenantID, email, model.InvitationPending).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) List(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]model.Invitation, int64, error) {
	var invitations []model.Invitation
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Invitation{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := applyFilter(db).Preload("Inviter").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&invitations).Error
	if err != nil {
		return nil, 0, err
	}

	return invitations, total, nil
}

func (r *invitationRepository) Update(ctx context.Context, inv *model.Invitation) error {
	return GetDB(ctx, r.db).Save(inv).Error
}
