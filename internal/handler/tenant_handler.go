package handler

import (
	"net/http"

	"buildflow/internal/middleware"
	"buildflow/internal/model"
	"buildflow/internal/service"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	tenantService service.TenantService
}

// NewTenantHandler sets up the routing dependencies for tenant endpoints
func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public signup
	router.POST("/tenants", h.RegisterTenant)

	tenants := router.Group("/tenants", middleware.RequireAuth())
	{
		tenants.GET("/current", h.GetCurrentTenant)
		tenants.PUT("/current", middleware.RequireRole(model.RoleOwner), h.UpdateCurrentTenant)
	}
}

// RegisterTenant handles POST /tenants
// @Summary      Register a tenant
// @Description  Creates a new tenant workspace together with its OWNER account
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterTenantRequest  true  "Register Tenant Payload"
// @Success      201      {object}  response.Response{data=service.TenantResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /tenants [post]
func (h *TenantHandler) RegisterTenant(c *gin.Context) {
	var req service.RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tenant, err := h.tenantService.RegisterTenant(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tenant))
}

// GetCurrentTenant handles GET /tenants/current
// @Summary      Get the authenticated tenant
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.TenantResponse}
// @Router       /tenants/current [get]
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// UpdateCurrentTenant handles PUT /tenants/current
// @Summary      Update the authenticated tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateTenantRequest  true  "Update Tenant Payload"
// @Success      200      {object}  response.Response{data=service.TenantResponse}
// @Failure      400      {object}  response.Response
// @Router       /tenants/current [put]
func (h *TenantHandler) UpdateCurrentTenant(c *gin.Context) {
	var req service.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}
