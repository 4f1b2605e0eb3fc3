package handler

import (
	"net/http"

	"buildflow/internal/middleware"
	"buildflow/internal/service"
	"buildflow/pkg/pagination"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler sets up the routing dependencies for document endpoints
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	documents := router.Group("/documents", middleware.RequireAuth())
	{
		documents.POST("", h.CreateDocument)
		documents.GET("", h.ListDocuments)
		documents.DELETE("/:id", h.DeleteDocument)
	}
}

// CreateDocument handles POST /documents
// @Summary      Attach a document to a project
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDocumentRequest  true  "Create Document Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c).String(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListDocuments handles GET /documents
// @Summary      List a project's documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     string  true   "Project the documents belong to"
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=[]service.DocumentResponse}
// @Failure      400         {object}  response.Response
// @Router       /documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "project_id query parameter is required"))
		return
	}

	p := pagination.Parse(c)
	docs, total, err := h.documentService.ListProjectDocuments(c.Request.Context(), middleware.TenantID(c), projectID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, docs, p.Page, p.Limit, total))
}

// DeleteDocument handles DELETE /documents/:id
// @Summary      Delete a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	if err := h.documentService.DeleteDocument(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
