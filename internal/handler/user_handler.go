package handler

import (
	"errors"
	"net/http"

	"gym_backend/internal/model"
	"gym_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's own profile
type UserHandler struct {
	service service.MemberService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.MemberService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Please enter both current and new passwords")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			errorJSON(c, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User account deleted successfully"})
}

func (h *UserHandler) UpdateMembership(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	var req model.UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.service.UpdateMembership(c.Request.Context(), userID, req.MembershipPlan)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Membership updated successfully", "user": user})
}

// RegisterUserRoutes registers the self-service routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc, roleMiddleware gin.HandlerFunc) {
	userGroup := rg.Group("/user", authMiddleware, roleMiddleware)
	{
		userGroup.GET("/profile", h.GetProfile)
		userGroup.PUT("/profile", h.UpdateProfile)
		userGroup.PUT("/change-password", h.ChangePassword)
		userGroup.DELETE("/account", h.DeleteAccount)
		userGroup.PUT("/update-membership", h.UpdateMembership)
	}
}
