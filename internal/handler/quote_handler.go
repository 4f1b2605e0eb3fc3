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

type QuoteHandler struct {
	quoteService service.QuoteService
}

// NewQuoteHandler sets up the routing dependencies for Quote endpoints
func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/quotes", middleware.RequireAuth())
	{
		quotes.POST("", h.CreateQuote)
		quotes.GET("", h.ListQuotes)
		quotes.GET("/:id", h.GetQuote)
		quotes.PUT("/:id", h.UpdateQuote)
		quotes.DELETE("/:id", middleware.RequireRole(model.RoleOwner, model.RoleAdmin), h.DeleteQuote)

		// Lifecycle transitions
		quotes.POST("/:id/send", h.SendQuote)
		quotes.POST("/:id/view", h.MarkViewed)
		quotes.POST("/:id/accept", h.AcceptQuote)
		quotes.POST("/:id/reject", h.RejectQuote)
	}
}

// CreateQuote handles POST /quotes
// @Summary      Create a new quote
// @Description  Creates a draft quote, computing tax and final amounts from the submitted figures
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateQuoteRequest  true  "Create Quote Payload"
// @Success      201      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c).String(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// ListQuotes handles GET /quotes
// @Summary      List quotes
// @Description  Lists the tenant's quotes, filterable by status, client and type
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        type       query     string  false  "Filter by quote type"
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  response.Response{data=[]service.QuoteResponse}
// @Router       /quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.QuoteFilter{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Type:     c.Query("type"),
		Page:     p.Page,
		Limit:    p.Limit,
	}

	quotes, total, err := h.quoteService.ListQuotes(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, quotes, p.Page, p.Limit, total))
}

// GetQuote handles GET /quotes/:id
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetQuote(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// UpdateQuote handles PUT /quotes/:id
// @Summary      Update a draft quote
// @Description  Updates quote fields and recomputes derived amounts. Only DRAFT quotes are editable.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Quote ID"
// @Param        payload  body      service.UpdateQuoteRequest  true  "Update Quote Payload"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	var req service.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.UpdateQuote(c.Request.Context(), middleware.TenantID(c), c.Param("id"), middleware.UserID(c).String(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// DeleteQuote handles DELETE /quotes/:id
// @Summary      Delete a draft quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if err := h.quoteService.DeleteQuote(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// SendQuote handles POST /quotes/:id/send
// @Summary      Send a quote
// @Description  Dispatches a DRAFT quote to the client, moving it to SENT
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      409  {object}  response.Response
// @Router       /quotes/{id}/send [post]
func (h *QuoteHandler) SendQuote(c *gin.Context) {
	quote, err := h.quoteService.SendQuote(c.Request.Context(), middleware.TenantID(c), c.Param("id"), middleware.UserID(c).String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// MarkViewed handles POST /quotes/:id/view
// @Summary      Mark a quote as viewed
// @Description  Records that the client has opened a SENT quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      409  {object}  response.Response
// @Router       /quotes/{id}/view [post]
func (h *QuoteHandler) MarkViewed(c *gin.Context) {
	quote, err := h.quoteService.MarkQuoteViewed(c.Request.Context(), middleware.TenantID(c), c.Param("id"), middleware.UserID(c).String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// AcceptQuote handles POST /quotes/:id/accept
// @Summary      Accept a quote
// @Description  Accepts the quote and creates the linked project in the same transaction
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      409  {object}  response.Response
// @Router       /quotes/{id}/accept [post]
func (h *QuoteHandler) AcceptQuote(c *gin.Context) {
	quote, err := h.quoteService.AcceptQuote(c.Request.Context(), middleware.TenantID(c), c.Param("id"), middleware.UserID(c).String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

type rejectQuoteRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectQuote handles POST /quotes/:id/reject
// @Summary      Reject a quote
// @Description  Rejects the quote, recording the client's reason
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "Quote ID"
// @Param        payload  body      rejectQuoteRequest  true  "Rejection Payload"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /quotes/{id}/reject [post]
func (h *QuoteHandler) RejectQuote(c *gin.Context) {
	var req rejectQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.RejectQuote(c.Request.Context(), middleware.TenantID(c), c.Param("id"), middleware.UserID(c).String(), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
