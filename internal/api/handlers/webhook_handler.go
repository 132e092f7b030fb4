package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/services"
)

// WebhookHandler receives payment provider notifications.
type WebhookHandler struct {
	payClient  payment.Client // nil when the provider is not configured
	reconciler *services.Reconciler
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(payClient payment.Client, reconciler *services.Reconciler) *WebhookHandler {
	return &WebhookHandler{payClient: payClient, reconciler: reconciler}
}

// HandlePaymentWebhook handles POST /v1/webhooks/payment. The signature is
// verified before anything is trusted; a non-2xx response makes the provider
// retry delivery.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	if h.payClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment processing is not configured"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := h.payClient.ConstructEvent(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("Rejected payment webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	if err := h.reconciler.HandleEvent(c.Request.Context(), event); err != nil {
		log.Printf("Failed to process payment event %s: %v", event.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
