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

type CreateDocumentRequest struct {
	ProjectID   string `json:"project_id"`
	ClientID    string `json:"client_id"`
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category" binding:"omitempty,oneof=CONTRACT DRAWING PERMIT PHOTO OTHER"`
	StorageKey  string `json:"storage_key" binding:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type DocumentResponse struct {
	ID          string  `json:"id"`
	ProjectID   *string `json:"project_id"`
	ClientID    *string `json:"client_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	StorageKey  string  `json:"storage_key"`
	ContentType string  `json:"content_type"`
	SizeBytes   int64   `json:"size_bytes"`
	CreatedAt   string  `json:"created_at"`
}

type DocumentService interface {
	CreateDocument(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateDocumentRequest) (DocumentResponse, error)
	ListProjectDocuments(ctx context.Context, tenantID uuid.UUID, projectID string, page, limit int) ([]DocumentResponse, int64, error)
	DeleteDocument(ctx context.Context, tenantID uuid.UUID, id string) error
}

type documentService struct {
	docRepo     repository.DocumentRepository
	projectRepo repository.ProjectRepository
}

func NewDocumentService(docRepo repository.DocumentRepository, projectRepo repository.ProjectRepository) DocumentService {
	return &documentService{docRepo: docRepo, projectRepo: projectRepo}
}

func (s *documentService) CreateDocument(ctx context.Context, tenantID uuid.UUID, actorID string, req CreateDocumentRequest) (DocumentResponse, error) {
	if req.ProjectID == "" && req.ClientID == "" {
		return DocumentResponse{}, apperr.NewValidation("project_id", "a document must be linked to a project or a client")
	}

	doc := model.Document{
		TenantID:    tenantID,
		Name:        req.Name,
		Category:    req.Category,
		StorageKey:  req.StorageKey,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		UploadedBy:  parseActor(actorID),
	}
	if doc.Category == "" {
		doc.Category = model.DocCategoryOther
	}

	if req.ProjectID != "" {
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			return DocumentResponse{}, apperr.NewValidation("project_id", "must be a valid uuid")
		}
		if _, err := s.projectRepo.FindByID(ctx, tenantID, projectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return DocumentResponse{}, apperr.NewNotFound("project")
			}
			return DocumentResponse{}, apperr.NewPersistence("project lookup", err)
		}
		doc.ProjectID = &projectID
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return DocumentResponse{}, apperr.NewValidation("client_id", "must be a valid uuid")
		}
		doc.ClientID = &clientID
	}

	if err := s.docRepo.Create(ctx, &doc); err != nil {
		return DocumentResponse{}, apperr.NewPersistence("document creation", err)
	}
	return toDocumentResponse(&doc), nil
}

func (s *documentService) ListProjectDocuments(ctx context.Context, tenantID uuid.UUID, projectID string, page, limit int) ([]DocumentResponse, int64, error) {
	parsed, err := uuid.Parse(projectID)
	if err != nil {
		return nil, 0, apperr.NewValidation("project_id", "must be a valid uuid")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	docs, total, err := s.docRepo.ListByProject(ctx, tenantID, parsed, page, limit)
	if err != nil {
		return nil, 0, apperr.NewPersistence("document listing", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, toDocumentResponse(&docs[i]))
	}
	return result, total, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, tenantID uuid.UUID, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return apperr.NewValidation("id", "must be a valid uuid")
	}
	if _, err := s.docRepo.FindByID(ctx, tenantID, docID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("document")
		}
		return apperr.NewPersistence("document lookup", err)
	}
	if err := s.docRepo.Delete(ctx, tenantID, docID); err != nil {
		return apperr.NewPersistence("document deletion", err)
	}
	return nil
}

func toDocumentResponse(d *model.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          d.ID.String(),
		Name:        d.Name,
		Category:    d.Category,
		StorageKey:  d.StorageKey,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if d.ProjectID != nil {
		v := d.ProjectID.String()
		resp.ProjectID = &v
	}
	if d.ClientID != nil {
		v := d.ClientID.String()
		resp.ClientID = &v
	}
	return resp
}
