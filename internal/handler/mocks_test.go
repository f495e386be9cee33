package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gym_backend/internal/middleware"
	"gym_backend/internal/model"
	"gym_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testJWT = utils.NewJWTUtil("handler-secret", utils.DefaultTokenTTL)

func bearer(t *testing.T, id uuid.UUID, role string) string {
	t.Helper()
	token, err := testJWT.GenerateToken(id, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path, body, auth string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authMW() gin.HandlerFunc {
	return middleware.JWTAuthMiddleware(testJWT)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*model.User)
	return u, args.String(1), args.Error(2)
}

func (m *mockAuthService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*model.User)
	return u, args.String(1), args.Error(2)
}

type mockMemberService struct {
	mock.Mock
}

func (m *mockMemberService) user(args mock.Arguments) (*model.User, error) {
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockMemberService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *mockMemberService) UpdateProfile(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	return m.user(m.Called(ctx, id, req))
}

func (m *mockMemberService) ChangePassword(ctx context.Context, id uuid.UUID, req model.ChangePasswordRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *mockMemberService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMemberService) UpdateMembership(ctx context.Context, id uuid.UUID, plan string) (*model.User, error) {
	return m.user(m.Called(ctx, id, plan))
}

func (m *mockMemberService) GetMember(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *mockMemberService) CreateMember(ctx context.Context, actorID uuid.UUID, req model.AdminCreateMemberRequest) (*model.User, error) {
	return m.user(m.Called(ctx, actorID, req))
}

func (m *mockMemberService) UpdateMember(ctx context.Context, actorID, id uuid.UUID, req model.AdminUpdateMemberRequest) (*model.User, error) {
	return m.user(m.Called(ctx, actorID, id, req))
}

func (m *mockMemberService) DeleteMember(ctx context.Context, actorID, id uuid.UUID) error {
	return m.Called(ctx, actorID, id).Error(0)
}

func (m *mockMemberService) BulkDeleteMembers(ctx context.Context, actorID uuid.UUID, ids []string) (int64, error) {
	args := m.Called(ctx, actorID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMemberService) ListMembers(ctx context.Context, filters model.MemberFilters) (*model.MemberPage, error) {
	args := m.Called(ctx, filters)
	p, _ := args.Get(0).(*model.MemberPage)
	return p, args.Error(1)
}

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) RecordPayment(ctx context.Context, actorID uuid.UUID, req model.RecordPaymentRequest) (*model.Payment, error) {
	args := m.Called(ctx, actorID, req)
	p, _ := args.Get(0).(*model.Payment)
	return p, args.Error(1)
}

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*model.DashboardStats)
	return s, args.Error(1)
}

func (m *mockDashboardService) BillingSummary(ctx context.Context) (*model.BillingSummary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*model.BillingSummary)
	return s, args.Error(1)
}

func (m *mockDashboardService) RevenueOverview(ctx context.Context, timeframe string) (*model.RevenueOverview, error) {
	args := m.Called(ctx, timeframe)
	o, _ := args.Get(0).(*model.RevenueOverview)
	return o, args.Error(1)
}

func (m *mockDashboardService) Transactions(ctx context.Context, filters model.PaymentFilters) (*model.PaymentPage, error) {
	args := m.Called(ctx, filters)
	p, _ := args.Get(0).(*model.PaymentPage)
	return p, args.Error(1)
}
