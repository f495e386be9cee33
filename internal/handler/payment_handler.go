package handler

import (
	"net/http"

	"gym_backend/internal/model"
	"gym_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentHandler records member payments
type PaymentHandler struct {
	service service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	var req model.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Missing required payment fields.")
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Server Error: Failed to record payment.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Payment recorded successfully!", "payment": payment})
}

// RegisterPaymentRoutes registers payment routes
func (h *PaymentHandler) RegisterPaymentRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc, roleMiddleware gin.HandlerFunc) {
	paymentGroup := rg.Group("/payments", authMiddleware, roleMiddleware)
	{
		paymentGroup.POST("/record-payment", h.RecordPayment)
	}
}
