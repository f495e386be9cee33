package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gym_backend/internal/middleware"
	"gym_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var fieldLabels = map[string]string{
	"email":         "Email",
	"phone":         "Phone number",
	"memberId":      "Member ID",
	"transactionId": "Transaction ID",
}

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// respondError maps service errors to status codes. Anything unrecognised is logged and
// reported as a 500 with the fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	var dup *service.DuplicateFieldError
	switch {
	case errors.As(err, &verr):
		errorJSON(c, http.StatusBadRequest, verr.Message)
	case errors.As(err, &dup):
		label, ok := fieldLabels[dup.Field]
		if !ok {
			label = dup.Field
		}
		errorJSON(c, http.StatusBadRequest, label+" already in use")
	case errors.Is(err, service.ErrDuplicateEmail):
		errorJSON(c, http.StatusBadRequest, "User already exists with this email")
	case errors.Is(err, service.ErrInvalidAdminCode):
		errorJSON(c, http.StatusBadRequest, "Invalid Admin Code")
	case errors.Is(err, service.ErrInvalidCredentials):
		errorJSON(c, http.StatusBadRequest, "Invalid Credentials")
	case errors.Is(err, service.ErrPasswordPolicy):
		errorJSON(c, http.StatusBadRequest, "New password must be at least 6 characters")
	case errors.Is(err, service.ErrRoleMismatch):
		errorJSON(c, http.StatusForbidden, "Access denied. The account role does not match the requested role.")
	case errors.Is(err, service.ErrForbidden):
		errorJSON(c, http.StatusForbidden, "Unauthorized: Cannot record payment for another user.")
	case errors.Is(err, service.ErrSelfDeletion):
		errorJSON(c, http.StatusForbidden, "Admins cannot delete their own account via this panel. Use your profile settings.")
	case errors.Is(err, service.ErrMemberNotFound):
		errorJSON(c, http.StatusNotFound, "Member not found")
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err, "path", c.Request.URL.Path)
		_ = c.Error(err)
		errorJSON(c, http.StatusInternalServerError, fallback)
	}
}

// getAuthUserID returns the caller id set by the JWT middleware, writing a 401 when it is absent
func getAuthUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.AuthUserID(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Unauthenticated")
	}
	return id, ok
}

// parseIDParam reads the :id path parameter, writing a 400 when it is not a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid Member ID format")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an integer query parameter, falling back to def when missing or malformed
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func queryString(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, err
		}
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}

func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
