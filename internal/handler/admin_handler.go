package handler

import (
	"fmt"
	"net/http"

	"gym_backend/internal/model"
	"gym_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles member management for admins
type AdminHandler struct {
	service service.MemberService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(s service.MemberService) *AdminHandler {
	return &AdminHandler{service: s}
}

func (h *AdminHandler) ListMembers(c *gin.Context) {
	filters := model.MemberFilters{
		Page:             queryInt(c, "page", service.DefaultPage),
		Limit:            queryInt(c, "limit", service.DefaultLimit),
		MembershipPlan:   queryString(c, "membershipPlan"),
		MembershipStatus: queryString(c, "membershipStatus"),
		Search:           queryString(c, "search"),
	}

	start, err := queryDate(c, "joinDateStart")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid date format for 'joinDateStart', use YYYY-MM-DD")
		return
	}
	end, err := queryDate(c, "joinDateEnd")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid date format for 'joinDateEnd', use YYYY-MM-DD")
		return
	}
	filters.JoinDateStart = start
	if end != nil {
		nextDay := end.AddDate(0, 0, 1) // Include the whole end day
		filters.JoinDateEnd = &nextDay
	}

	page, err := h.service.ListMembers(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) GetMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	member, err := h.service.GetMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *AdminHandler) CreateMember(c *gin.Context) {
	actorID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	var req model.AdminCreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	member, err := h.service.CreateMember(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err, "Server error: Could not create member.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Member created successfully", "member": member})
}

func (h *AdminHandler) UpdateMember(c *gin.Context) {
	actorID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req model.AdminUpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	member, err := h.service.UpdateMember(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member updated successfully", "member": member})
}

func (h *AdminHandler) DeleteMember(c *gin.Context) {
	actorID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMember(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}

func (h *AdminHandler) BulkDeleteMembers(c *gin.Context) {
	actorID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	var req model.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "No member IDs provided for deletion")
		return
	}

	count, err := h.service.BulkDeleteMembers(c.Request.Context(), actorID, req.MemberIDs)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("%d members deleted successfully!", count),
		"deletedCount": count,
	})
}

// RegisterAdminRoutes registers the member management routes
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc, adminMiddleware gin.HandlerFunc) {
	adminGroup := rg.Group("/admin", authMiddleware, adminMiddleware)
	{
		adminGroup.GET("/members", h.ListMembers)
		adminGroup.POST("/members", h.CreateMember)
		adminGroup.POST("/members/bulk-delete", h.BulkDeleteMembers)
		adminGroup.GET("/members/:id", h.GetMember)
		adminGroup.PUT("/members/:id", h.UpdateMember)
		adminGroup.DELETE("/members/:id", h.DeleteMember)
	}
}
