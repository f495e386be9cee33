package handler

import (
	"net/http"
	"time"

	"gym_backend/internal/model"
	"gym_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves admin dashboard figures
type DashboardHandler struct {
	service service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Server Error: Could not fetch dashboard statistics.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) BillingSummary(c *gin.Context) {
	summary, err := h.service.BillingSummary(c.Request.Context())
	if err != nil {
		respondError(c, err, "Server Error: Could not fetch billing summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) RevenueOverview(c *gin.Context) {
	overview, err := h.service.RevenueOverview(c.Request.Context(), c.Query("timeframe"))
	if err != nil {
		respondError(c, err, "Server Error: Could not fetch revenue overview.")
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *DashboardHandler) Transactions(c *gin.Context) {
	filters := model.PaymentFilters{
		Page:        queryInt(c, "page", service.DefaultPage),
		Limit:       queryInt(c, "limit", service.DefaultLimit),
		Status:      queryString(c, "status"),
		PaymentType: queryString(c, "paymentType"),
		Search:      queryString(c, "search"),
	}

	start, err := queryDate(c, "startDate")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid date format for 'startDate', use YYYY-MM-DD")
		return
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid date format for 'endDate', use YYYY-MM-DD")
		return
	}
	filters.StartDate = start
	if end != nil {
		endOfDay := end.Add(24*time.Hour - time.Millisecond)
		filters.EndDate = &endOfDay
	}

	if filters.MinAmount, err = queryFloat(c, "minAmount"); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid minAmount")
		return
	}
	if filters.MaxAmount, err = queryFloat(c, "maxAmount"); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid maxAmount")
		return
	}

	page, err := h.service.Transactions(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "Server Error: Could not fetch transactions.")
		return
	}
	c.JSON(http.StatusOK, page)
}

// RegisterDashboardRoutes registers the admin dashboard routes
func (h *DashboardHandler) RegisterDashboardRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc, adminMiddleware gin.HandlerFunc) {
	dashboardGroup := rg.Group("/dashboard", authMiddleware, adminMiddleware)
	{
		dashboardGroup.GET("/stats", h.Stats)

		billing := dashboardGroup.Group("/billing")
		billing.GET("/summary", h.BillingSummary)
		billing.GET("/revenue-overview", h.RevenueOverview)
		billing.GET("/transactions", h.Transactions)
	}
}
