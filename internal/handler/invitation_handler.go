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

type InvitationHandler struct {
	invitationService service.InvitationService
}

// NewInvitationHandler sets up the routing dependencies for invitation endpoints
func NewInvitationHandler(invitationService service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *InvitationHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public accept route — the token itself authenticates the invitee
	router.POST("/invitations/accept", h.AcceptInvitation)

	invitations := router.Group("/invitations", middleware.RequireRole(model.RoleOwner, model.RoleAdmin))
	{
		invitations.POST("", h.CreateInvitation)
		invitations.GET("", h.ListInvitations)
		invitations.POST("/:id/revoke", h.RevokeInvitation)
	}
}

// CreateInvitation handles POST /invitations
// @Summary      Invite a user
// @Description  Creates an invitation token for joining the tenant with the given role
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInvitationRequest  true  "Create Invitation Payload"
// @Success      201      {object}  response.Response{data=service.InvitationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /invitations [post]
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	var req service.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	inv, err := h.invitationService.CreateInvitation(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c).String(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, inv))
}

// ListInvitations handles GET /invitations
// @Summary      List invitations
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=[]service.InvitationResponse}
// @Router       /invitations [get]
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	p := pagination.Parse(c)
	invitations, total, err := h.invitationService.ListInvitations(c.Request.Context(), middleware.TenantID(c), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, invitations, p.Page, p.Limit, total))
}

// RevokeInvitation handles POST /invitations/:id/revoke
// @Summary      Revoke an invitation
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invitation ID"
// @Success      200  {object}  response.Response{data=service.InvitationResponse}
// @Failure      409  {object}  response.Response
// @Router       /invitations/{id}/revoke [post]
func (h *InvitationHandler) RevokeInvitation(c *gin.Context) {
	inv, err := h.invitationService.RevokeInvitation(c.Request.Context(), middleware.TenantID(c), c.Param("id"), middleware.UserID(c).String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inv))
}

// AcceptInvitation handles POST /invitations/accept
// @Summary      Accept an invitation
// @Description  Redeems an invitation token, creating the invitee's account in the tenant
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AcceptInvitationRequest  true  "Accept Invitation Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /invitations/accept [post]
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	var req service.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.invitationService.AcceptInvitation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}
