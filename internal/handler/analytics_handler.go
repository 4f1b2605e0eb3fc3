package handler

import (
	"net/http"
	"strconv"

	"buildflow/internal/middleware"
	"buildflow/internal/service"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.QuoteAnalyticsService
}

// NewAnalyticsHandler sets up the routing dependencies for analytics endpoints
func NewAnalyticsHandler(analyticsService service.QuoteAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/analytics", middleware.RequireAuth())
	{
		analytics.GET("/quotes", h.GetQuoteAnalytics)
		analytics.GET("/quotes/expiring", h.GetExpiringSoon)
	}
}

// GetQuoteAnalytics handles GET /analytics/quotes
// @Summary      Quote pipeline analytics
// @Description  Returns per-status counts, the conversion rate and the total accepted value
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.QuoteAnalyticsResponse}
// @Router       /analytics/quotes [get]
func (h *AnalyticsHandler) GetQuoteAnalytics(c *gin.Context) {
	stats, err := h.analyticsService.GetQuoteAnalytics(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetExpiringSoon handles GET /analytics/quotes/expiring
// @Summary      Quotes expiring soon
// @Description  Lists open quotes whose validity window closes within the given number of days
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        within_days  query     int  false  "Lookahead window in days (default 7)"
// @Success      200          {object}  response.Response{data=[]model.ExpiringQuote}
// @Router       /analytics/quotes/expiring [get]
func (h *AnalyticsHandler) GetExpiringSoon(c *gin.Context) {
	withinDays, _ := strconv.Atoi(c.DefaultQuery("within_days", "7"))
	if withinDays < 1 {
		withinDays = 7
	}

	quotes, err := h.analyticsService.GetExpiringSoon(c.Request.Context(), middleware.TenantID(c), withinDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotes))
}
