package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"gym_backend/internal/middleware"
	"gym_backend/internal/model"
	"gym_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func dashboardRouter(svc service.DashboardService) *gin.Engine {
	r := gin.New()
	NewDashboardHandler(svc).RegisterDashboardRoutes(r.Group("/api"), authMW(), middleware.AdminMiddleware())
	return r
}

func TestDashboardHandler_Stats(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Stats", mock.Anything).Return(&model.DashboardStats{
		TotalMembers: 40, NewMembers: 5, MonthlyRevenue: "1250.50", ExpiringMemberships: 3,
	}, nil)

	w := doRequest(dashboardRouter(svc), http.MethodGet, "/api/dashboard/stats", "", bearer(t, uuid.New(), model.RoleAdmin))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalMembers":40,"newMembers":5,"monthlyRevenue":"1250.50","expiringMemberships":3}`, w.Body.String())
}

func TestDashboardHandler_MemberForbidden(t *testing.T) {
	svc := new(mockDashboardService)

	w := doRequest(dashboardRouter(svc), http.MethodGet, "/api/dashboard/billing/summary", "", bearer(t, uuid.New(), model.RoleMember))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDashboardHandler_BillingSummary_Error(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("BillingSummary", mock.Anything).Return(nil, errors.New("timeout"))

	w := doRequest(dashboardRouter(svc), http.MethodGet, "/api/dashboard/billing/summary", "", bearer(t, uuid.New(), model.RoleAdmin))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server Error: Could not fetch billing summary."}`, w.Body.String())
}

func TestDashboardHandler_RevenueOverview(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("RevenueOverview", mock.Anything, "Last 90 Days").Return(&model.RevenueOverview{
		Labels: []string{"2024-05-01"}, SeriesData: []string{"99.00"},
	}, nil)

	w := doRequest(dashboardRouter(svc), http.MethodGet, "/api/dashboard/billing/revenue-overview?timeframe=Last+90+Days", "", bearer(t, uuid.New(), model.RoleAdmin))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"labels":["2024-05-01"],"seriesData":["99.00"]}`, w.Body.String())
}

func TestDashboardHandler_Transactions(t *testing.T) {
	svc := new(mockDashboardService)
	wantStart := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 5, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	svc.On("Transactions", mock.Anything, mock.MatchedBy(func(f model.PaymentFilters) bool {
		return f.Page == 1 && f.Limit == 20 &&
			f.Status != nil && *f.Status == model.PaymentStatusCompleted &&
			f.PaymentType == nil &&
			f.StartDate != nil && f.StartDate.Equal(wantStart) &&
			f.EndDate != nil && f.EndDate.Equal(wantEnd) &&
			f.MinAmount != nil && *f.MinAmount == 10 &&
			f.MaxAmount == nil
	})).Return(&model.PaymentPage{TotalTransactions: 1, TotalPages: 1, CurrentPage: 1}, nil)

	w := doRequest(dashboardRouter(svc), http.MethodGet,
		"/api/dashboard/billing/transactions?limit=20&status=completed&startDate=2024-05-01&endDate=2024-05-31&minAmount=10",
		"", bearer(t, uuid.New(), model.RoleAdmin))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalTransactions":1`)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Transactions_BadQuery(t *testing.T) {
	for _, query := range []string{"startDate=05/01/2024", "endDate=tomorrow", "minAmount=ten", "maxAmount=1e"} {
		t.Run(query, func(t *testing.T) {
			svc := new(mockDashboardService)

			w := doRequest(dashboardRouter(svc), http.MethodGet, "/api/dashboard/billing/transactions?"+query, "", bearer(t, uuid.New(), model.RoleAdmin))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Transactions", mock.Anything, mock.Anything)
		})
	}
}
