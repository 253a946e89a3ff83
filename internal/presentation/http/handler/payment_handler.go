package handler

import (
	"github.com/gin-gonic/gin"

	"restaurant-billing/internal/application/service"
	"restaurant-billing/internal/presentation/http/dto/response"
)

// PaymentHandler handles card payment HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Config exposes the publishable key the card terminal needs
func (h *PaymentHandler) Config(c *gin.Context) {
	response.OK(c, "Payment config retrieved successfully", gin.H{
		"publishable_key": h.paymentService.PublishableKey(),
	})
}

// CreateIntent handles creating a card payment intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	clientSecret, err := h.paymentService.CreateIntent(c.Request.Context(), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment intent created successfully", gin.H{
		"client_secret": clientSecret,
	})
}

// Confirm handles verifying that a payment intent has succeeded
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req struct {
		PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.paymentService.Confirm(c.Request.Context(), req.PaymentIntentID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment confirmed successfully", gin.H{
		"status": "succeeded",
	})
}
