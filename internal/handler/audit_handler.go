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

type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler sets up the routing dependencies for audit log endpoints
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", middleware.RequireRole(model.RoleOwner, model.RoleAdmin), h.GetAuditLogs)
}

// GetAuditLogs handles GET /audit-logs
// @Summary      List audit logs
// @Description  Returns the tenant's audit trail, newest first, filterable by action
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        action  query     string  false  "Filter by action"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), middleware.TenantID(c), c.Query("action"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, logs, p.Page, p.Limit, total))
}
