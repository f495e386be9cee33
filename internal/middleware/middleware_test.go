package middleware

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gym_backend/internal/model"
	"gym_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(jwtUtil *utils.JWTUtil, roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtUtil), RoleMiddleware(roles...), func(c *gin.Context) {
		id, ok := AuthUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("mw-secret", utils.DefaultTokenTTL)
	userID := uuid.New()
	token, err := jwtUtil.GenerateToken(userID, model.RoleMember)
	require.NoError(t, err)

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{"bearer token", map[string]string{"Authorization": "Bearer " + token}, http.StatusOK},
		{"lowercase scheme", map[string]string{"Authorization": "bearer " + token}, http.StatusOK},
		{"legacy header", map[string]string{LegacyTokenHeader: token}, http.StatusOK},
		{"missing", nil, http.StatusUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic " + token}, http.StatusUnauthorized},
		{"garbage token", map[string]string{"Authorization": "Bearer not.a.jwt"}, http.StatusUnauthorized},
	}

	router := protectedRouter(jwtUtil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"message"`)
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("mw-secret", utils.DefaultTokenTTL)
	memberToken, err := jwtUtil.GenerateToken(uuid.New(), model.RoleMember)
	require.NoError(t, err)
	adminToken, err := jwtUtil.GenerateToken(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		roles      []string
		token      string
		wantStatus int
	}{
		{"admin route, member caller", []string{model.RoleAdmin}, memberToken, http.StatusForbidden},
		{"admin route, admin caller", []string{model.RoleAdmin}, adminToken, http.StatusOK},
		{"any role", nil, memberToken, http.StatusOK},
		{"member route, admin caller", []string{model.RoleMember, model.RoleAdmin}, adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := protectedRouter(jwtUtil, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoleMiddleware_WithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	r := gin.New()
	r.POST("/login", RateLimitMiddleware(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimitMiddleware_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.POST("/login", RateLimitMiddleware(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimitMiddleware_HonoursForwardedForFromTrustedProxy(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies([]string{"10.0.0.0/8"}))
	r.POST("/login", RateLimitMiddleware(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.1.2.3:443"
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
}

func TestIPRateLimiter_SweepDropsIdleBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(60, 1)
	clock := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	assert.True(t, limiter.Allow("10.0.0.1"))
	clock = clock.Add(5 * time.Minute)
	assert.True(t, limiter.Allow("10.0.0.2"))

	clock = clock.Add(6 * time.Minute)
	assert.Equal(t, 1, limiter.Sweep(DefaultLimiterIdleTTL))
	assert.Equal(t, 1, limiter.Len())

	clock = clock.Add(DefaultLimiterIdleTTL)
	assert.Equal(t, 1, limiter.Sweep(DefaultLimiterIdleTTL))
	assert.Equal(t, 0, limiter.Len())
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	r := gin.New()
	r.Use(MetricsMiddleware(metrics))
	r.GET("/api/admin/members/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/members/abc", nil))

	families, err := reg.Gather()
	require.NoError(t, err)

	labels := map[string]string{}
	var count float64
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		metric := mf.GetMetric()[0]
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		count = metric.GetCounter().GetValue()
	}
	assert.Equal(t, float64(1), count)
	assert.Equal(t, "/api/admin/members/:id", labels["route"])
	assert.Equal(t, "404", labels["status"])
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.True(t, strings.Contains(buf.String(), "request_id=req-42"))
	assert.Contains(t, buf.String(), "status=200")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestTracingMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TracingMiddleware("gym-backend-test"))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
