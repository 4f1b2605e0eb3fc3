package service

import (
	"context"
	"errors"
	"os"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for request validation
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}

// UserResponse returns a user without exposing sensitive data
type UserResponse struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	GetUser(ctx context.Context, tenantID uuid.UUID, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, tenantID uuid.UUID, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, tenantID uuid.UUID, id string) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

const refreshTokenTTL = 7 * 24 * time.Hour

func validRole(role string) bool {
	return role == model.RoleOwner || role == model.RoleAdmin || role == model.RoleMember
}

func toUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		TenantID:  user.TenantID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.TenantSlug, req.Email)
	if err != nil {
		return nil, apperr.NewValidation("credentials", "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.NewValidation("credentials", "invalid email or password")
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	stored, err := s.repo.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, apperr.NewValidation("refresh_token", "invalid or expired")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, req.RefreshToken)
		return nil, apperr.NewValidation("refresh_token", "invalid or expired")
	}

	// Rotate: the old token dies with the new issue.
	if err := s.repo.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		return nil, apperr.NewPersistence("refresh token rotation", err)
	}
	return s.issueTokens(ctx, &stored.User)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"tid":  user.TenantID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	accessToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, apperr.NewPersistence("token signing", err)
	}

	refresh := model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, &refresh); err != nil {
		return nil, apperr.NewPersistence("refresh token creation", err)
	}

	return &TokenResponse{AccessToken: accessToken, RefreshToken: refresh.Token}, nil
}

func (s *userService) GetUser(ctx context.Context, tenantID uuid.UUID, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NewValidation("id", "must be a valid uuid")
	}
	user, err := s.repo.FindByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("user")
		}
		return nil, apperr.NewPersistence("user lookup", err)
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.repo.List(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, apperr.NewPersistence("user listing", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *toUserResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, tenantID uuid.UUID, id string, req UpdateUserRequest) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NewValidation("id", "must be a valid uuid")
	}
	user, err := s.repo.FindByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("user")
		}
		return nil, apperr.NewPersistence("user lookup", err)
	}

	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, apperr.NewValidation("role", "must be OWNER, ADMIN, or MEMBER")
		}
		user.Role = *req.Role
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperr.NewPersistence("user update", err)
	}
	return toUserResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, tenantID uuid.UUID, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return apperr.NewValidation("id", "must be a valid uuid")
	}
	user, err := s.repo.FindByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("user")
		}
		return apperr.NewPersistence("user lookup", err)
	}
	if user.Role == model.RoleOwner {
		return apperr.NewConflict("the tenant owner cannot be removed")
	}
	return s.repo.Delete(ctx, tenantID, userID)
}
