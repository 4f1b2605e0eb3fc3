package handler

import (
	"net/http"

	"buildflow/internal/middleware"
	"buildflow/internal/model"
	"buildflow/internal/service"
	"buildflow/pkg/pagination"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler sets up the routing dependencies for quote template endpoints
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/templates", middleware.RequireAuth())
	{
		templates.POST("", middleware.RequireRole(model.RoleOwner, model.RoleAdmin), h.CreateTemplate)
		templates.GET("", h.ListTemplates)
		templates.GET("/:id", h.GetTemplate)
		templates.DELETE("/:id", middleware.RequireRole(model.RoleOwner, model.RoleAdmin), h.DeleteTemplate)
	}
}

// CreateTemplate handles POST /templates
// @Summary      Create a quote template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTemplateRequest  true  "Create Template Payload"
// @Success      201      {object}  response.Response{data=service.TemplateResponse}
// @Failure      400      {object}  response.Response
// @Router       /templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tpl, err := h.templateService.CreateTemplate(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c).String(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tpl))
}

// ListTemplates handles GET /templates
// @Summary      List quote templates
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        type   query     string  false  "Filter by quote type"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.TemplateResponse}
// @Router       /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	p := pagination.Parse(c)
	templates, total, err := h.templateService.ListTemplates(c.Request.Context(), middleware.TenantID(c), c.Query("type"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, templates, p.Page, p.Limit, total))
}

// GetTemplate handles GET /templates/:id
// @Summary      Get a quote template
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response{data=service.TemplateResponse}
// @Failure      404  {object}  response.Response
// @Router       /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.templateService.GetTemplate(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tpl))
}

// DeleteTemplate handles DELETE /templates/:id
// @Summary      Delete a quote template
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.templateService.DeleteTemplate(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
