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

type CreateClientRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
	CompanyName   string `json:"company_name"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Notes         string `json:"notes"`
}

type UpdateClientRequest struct {
	Name          *string `json:"name"`
	CompanyName   *string `json:"company_name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person"`
	Notes         *string `json:"notes"`
}

type ClientResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	CompanyName   string `json:"company_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Notes         string `json:"notes"`
	CreatedAt     string `json:"created_at"`
}

type ClientService interface {
	CreateClient(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (ClientResponse, error)
	GetClient(ctx context.Context, tenantID uuid.UUID, id string) (ClientResponse, error)
	ListClients(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]ClientResponse, int64, error)
	UpdateClient(ctx context.Context, tenantID uuid.UUID, id string, req UpdateClientRequest) (ClientResponse, error)
	DeleteClient(ctx context.Context, tenantID uuid.UUID, id string) error
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) CreateClient(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (ClientResponse, error) {
	clientType := req.Type
	if clientType == "" {
		clientType = model.ClientTypeIndividual
	}

	client := model.Client{
		TenantID:      tenantID,
		Name:          req.Name,
		Type:          clientType,
		CompanyName:   req.CompanyName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, &client); err != nil {
		return ClientResponse{}, apperr.NewPersistence("client creation", err)
	}
	return toClientResponse(&client), nil
}

func (s *clientService) GetClient(ctx context.Context, tenantID uuid.UUID, id string) (ClientResponse, error) {
	client, err := s.findClient(ctx, tenantID, id)
	if err != nil {
		return ClientResponse{}, err
	}
	return toClientResponse(client), nil
}

func (s *clientService) ListClients(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]ClientResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	clients, total, err := s.repo.List(ctx, tenantID, search, page, limit)
	if err != nil {
		return nil, 0, apperr.NewPersistence("client listing", err)
	}

	result := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		result = append(result, toClientResponse(&clients[i]))
	}
	return result, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, tenantID uuid.UUID, id string, req UpdateClientRequest) (ClientResponse, error) {
	client, err := s.findClient(ctx, tenantID, id)
	if err != nil {
		return ClientResponse{}, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.CompanyName != nil {
		client.CompanyName = *req.CompanyName
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.ContactPerson != nil {
		client.ContactPerson = *req.ContactPerson
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return ClientResponse{}, apperr.NewPersistence("client update", err)
	}
	return toClientResponse(client), nil
}

func (s *clientService) DeleteClient(ctx context.Context, tenantID uuid.UUID, id string) error {
	client, err := s.findClient(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, client.ID); err != nil {
		return apperr.NewPersistence("client deletion", err)
	}
	return nil
}

func (s *clientService) findClient(ctx context.Context, tenantID uuid.UUID, id string) (*model.Client, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NewValidation("id", "must be a valid uuid")
	}
	client, err := s.repo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("client")
		}
		return nil, apperr.NewPersistence("client lookup", err)
	}
	return client, nil
}

func toClientResponse(c *model.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		Type:          c.Type,
		CompanyName:   c.CompanyName,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		ContactPerson: c.ContactPerson,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}
