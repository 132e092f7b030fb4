package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fanfcorp/acp-market/internal/auth"
	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/services"
)

// AdminHandler handles the moderation and back-office endpoints.
type AdminHandler struct {
	cfg                   *config.Config
	serverService         services.IServerService
	jobService            services.IJobService
	submissionService     services.ISubmissionService
	waitlistService       services.IWaitlistService
	serviceRequestService services.IServiceRequestService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	cfg *config.Config,
	serverService services.IServerService,
	jobService services.IJobService,
	submissionService services.ISubmissionService,
	waitlistService services.IWaitlistService,
	serviceRequestService services.IServiceRequestService,
) *AdminHandler {
	return &AdminHandler{
		cfg:                   cfg,
		serverService:         serverService,
		jobService:            jobService,
		submissionService:     submissionService,
		waitlistService:       waitlistService,
		serviceRequestService: serviceRequestService,
	}
}

// IssueToken handles POST /v1/admin/token. The shared admin key is exchanged
// once for a short-lived capability token.
func (h *AdminHandler) IssueToken(c *gin.Context) {
	var req struct {
		Key string `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin key is required"})
		return
	}

	if h.cfg.AdminKeyHash == "" || !auth.CheckKeyHash(req.Key, h.cfg.AdminKeyHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin key"})
		return
	}

	token, err := auth.GenerateAdminToken(h.cfg.AdminTokenKey, h.cfg.AdminTokenTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresIn": int(h.cfg.AdminTokenTTL.Seconds()),
	})
}

// ListServers handles GET /v1/admin/servers
func (h *AdminHandler) ListServers(c *gin.Context) {
	servers, err := h.serverService.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, err, "Failed to list servers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"servers": servers})
}

// ApproveServer handles POST /v1/admin/servers/:id/approve
func (h *AdminHandler) ApproveServer(c *gin.Context) {
	server, err := h.serverService.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to approve server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "server": server})
}

// RejectServer handles POST /v1/admin/servers/:id/reject. The pending entry
// is removed outright.
func (h *AdminHandler) RejectServer(c *gin.Context) {
	if err := h.serverService.Reject(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to reject server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListJobs handles GET /v1/admin/jobs
func (h *AdminHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobService.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, err, "Failed to list jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// PublishJob handles POST /v1/admin/jobs/:id/publish
func (h *AdminHandler) PublishJob(c *gin.Context) {
	job, err := h.jobService.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to publish job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

// DeleteJob handles DELETE /v1/admin/jobs/:id
func (h *AdminHandler) DeleteJob(c *gin.Context) {
	if err := h.jobService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to delete job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListSubmissions handles GET /v1/admin/submissions
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.submissionService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list submissions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// ListWaitlist handles GET /v1/admin/waitlist
func (h *AdminHandler) ListWaitlist(c *gin.Context) {
	entries, err := h.waitlistService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list waitlist entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ListServiceRequests handles GET /v1/admin/service-requests
func (h *AdminHandler) ListServiceRequests(c *gin.Context) {
	requests, err := h.serviceRequestService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list service requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
