package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"gym_backend/internal/model"
	"gym_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authRouter(svc service.AuthService) *gin.Engine {
	r := gin.New()
	NewAuthHandler(svc).RegisterAuthRoutes(r.Group("/api"))
	return r
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := new(mockAuthService)
	user := &model.User{ID: uuid.New(), FullName: "Dana Park", Email: "dana@example.com", Role: model.RoleMember, MemberID: "M123456"}
	svc.On("Signup", mock.Anything, model.SignupRequest{
		FullName: "Dana Park", Phone: "555-0100", Email: "dana@example.com", Password: "secret1",
	}).Return(user, "signed.jwt.token", nil)

	w := doRequest(authRouter(svc), http.MethodPost, "/api/auth/signup",
		`{"fullName":"Dana Park","phone":"555-0100","email":"dana@example.com","password":"secret1"}`, "")

	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Message string            `json:"message"`
		Token   string            `json:"token"`
		User    model.UserSummary `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Signup successful", body.Message)
	assert.Equal(t, "signed.jwt.token", body.Token)
	assert.Equal(t, user.ID, body.User.UserID)
	assert.Equal(t, "M123456", body.User.MemberID)
	assert.NotContains(t, w.Body.String(), "password")
	svc.AssertExpectations(t)
}

func TestAuthHandler_Signup_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"duplicate email", service.ErrDuplicateEmail, http.StatusBadRequest, "User already exists with this email"},
		{"duplicate phone", &service.DuplicateFieldError{Field: "phone"}, http.StatusBadRequest, "Phone number already in use"},
		{"bad admin code", service.ErrInvalidAdminCode, http.StatusBadRequest, "Invalid Admin Code"},
		{"validation", &service.ValidationError{Message: "Validation failed: Email is invalid (email)"}, http.StatusBadRequest, "Validation failed: Email is invalid (email)"},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, "Server Error during signup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthService)
			svc.On("Signup", mock.Anything, mock.Anything).Return(nil, "", tt.err)

			w := doRequest(authRouter(svc), http.MethodPost, "/api/auth/signup",
				`{"fullName":"A","phone":"1","email":"a@example.com","password":"secret1"}`, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, `{"message":"`+tt.wantMsg+`"}`, w.Body.String())
		})
	}
}

func TestAuthHandler_Signup_RejectsMissingFields(t *testing.T) {
	svc := new(mockAuthService)

	w := doRequest(authRouter(svc), http.MethodPost, "/api/auth/signup", `{"email":"a@example.com"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestAuthHandler_Signup_LowercaseRoleReachesService(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Signup", mock.Anything, mock.MatchedBy(func(r model.SignupRequest) bool {
		return r.Role == "admin"
	})).Return(&model.User{ID: uuid.New(), Role: model.RoleAdmin}, "tok", nil)

	w := doRequest(authRouter(svc), http.MethodPost, "/api/auth/signup",
		`{"fullName":"A","phone":"1","email":"a@example.com","password":"secret1","role":"admin","adminCode":"code"}`, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusBadRequest},
		{"role mismatch", service.ErrRoleMismatch, http.StatusForbidden},
		{"admin code", service.ErrInvalidAdminCode, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthService)
			var user *model.User
			if tt.err == nil {
				user = &model.User{ID: uuid.New(), Role: model.RoleAdmin, Email: "boss@example.com"}
			}
			svc.On("Login", mock.Anything, model.LoginRequest{
				Email: "boss@example.com", Password: "secret1", Role: "ADMIN", AdminCode: "code",
			}).Return(user, "tok", tt.err)

			w := doRequest(authRouter(svc), http.MethodPost, "/api/auth/login",
				`{"email":"boss@example.com","password":"secret1","role":"ADMIN","adminCode":"code"}`, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err == nil {
				assert.Contains(t, w.Body.String(), `"message":"Login successful"`)
				assert.Contains(t, w.Body.String(), `"token":"tok"`)
			}
		})
	}
}
