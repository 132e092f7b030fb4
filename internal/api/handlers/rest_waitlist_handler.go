package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fanfcorp/acp-market/internal/services"
)

// RestWaitlistHandler handles REST requests for the waitlist and inbound
// service requests.
type RestWaitlistHandler struct {
	waitlistService       services.IWaitlistService
	serviceRequestService services.IServiceRequestService
}

// NewRestWaitlistHandler creates a new RestWaitlistHandler.
func NewRestWaitlistHandler(waitlistService services.IWaitlistService, serviceRequestService services.IServiceRequestService) *RestWaitlistHandler {
	return &RestWaitlistHandler{
		waitlistService:       waitlistService,
		serviceRequestService: serviceRequestService,
	}
}

// JoinWaitlist handles POST /v1/waitlist. Re-joining with the same email
// updates the existing entry.
func (h *RestWaitlistHandler) JoinWaitlist(c *gin.Context) {
	var req struct {
		Email   string `json:"email"`
		Tools   string `json:"tools"`
		Consent bool   `json:"consent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	entry, created, err := h.waitlistService.Join(c.Request.Context(), req.Email, req.Tools, req.Consent)
	if err != nil {
		respondServiceError(c, err, "Failed to join waitlist")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "entry": entry})
}

// CreateServiceRequest handles POST /v1/service-requests
func (h *RestWaitlistHandler) CreateServiceRequest(c *gin.Context) {
	var input services.ServiceRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	request, err := h.serviceRequestService.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Failed to create service request")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "request": request})
}
