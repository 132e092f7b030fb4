package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/services"
	"github.com/fanfcorp/acp-market/internal/tasks"
)

// RestJobHandler handles REST requests for the job board.
type RestJobHandler struct {
	cfg        *config.Config
	jobService services.IJobService
	taskClient tasks.Enqueuer // nil disables confirmation emails
}

// NewRestJobHandler creates a new RestJobHandler.
func NewRestJobHandler(cfg *config.Config, jobService services.IJobService, taskClient tasks.Enqueuer) *RestJobHandler {
	return &RestJobHandler{
		cfg:        cfg,
		jobService: jobService,
		taskClient: taskClient,
	}
}

// SearchJobs handles GET /v1/jobs
func (h *RestJobHandler) SearchJobs(c *gin.Context) {
	limit, offset := parsePagination(c, h.cfg)
	criteria := services.JobSearchCriteria{
		Query:        c.Query("q"),
		Location:     c.Query("location"),
		JobType:      c.Query("jobType"),
		WorkLocation: c.Query("workLocation"),
		Tier:         c.Query("tier"),
		Limit:        limit,
		Offset:       offset,
	}

	page, err := h.jobService.Search(c.Request.Context(), criteria)
	if err != nil {
		respondServiceError(c, err, "Failed to search jobs")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetJobBySlug handles GET /v1/jobs/:slug
func (h *RestJobHandler) GetJobBySlug(c *gin.Context) {
	job, err := h.jobService.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// CreateJob handles POST /v1/jobs. The posting goes into the review queue and
// is not public until published.
func (h *RestJobHandler) CreateJob(c *gin.Context) {
	var input services.JobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	job, err := h.jobService.CreateFree(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Failed to create job posting")
		return
	}

	h.enqueueConfirmation(job.ContactEmail,
		"Your job posting was received",
		fmt.Sprintf("Thanks for posting %q at %s. The listing is now in review and will appear on the board once approved.", job.JobTitle, job.CompanyName))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"job":     job,
	})
}

// CreateJobCheckout handles POST /v1/jobs/checkout. The posting is created
// awaiting payment and the caller is redirected to the checkout URL.
func (h *RestJobHandler) CreateJobCheckout(c *gin.Context) {
	var req struct {
		services.JobInput
		ListingType string `json:"listingType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.ListingType == "" {
		req.ListingType = models.JobListingStandard
	}

	job, session, err := h.jobService.CreateCheckout(c.Request.Context(), req.JobInput, req.ListingType)
	if err != nil {
		respondServiceError(c, err, "Failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"jobId":       job.ID,
		"jobSlug":     job.Slug,
		"sessionId":   session.ID,
		"checkoutUrl": session.URL,
	})
}

// VerifyJobPayment handles POST /v1/jobs/verify-payment. Browser-driven
// fallback for when the redirect lands before the webhook is processed.
func (h *RestJobHandler) VerifyJobPayment(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
		JobID     string `json:"jobId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.SessionID == "" || req.JobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and jobId are required"})
		return
	}

	job, err := h.jobService.VerifyPayment(c.Request.Context(), req.SessionID, req.JobID)
	if err != nil {
		respondServiceError(c, err, "Failed to verify payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": job.Status == models.JobStatusPublished,
		"status":  job.Status,
		"job":     job,
	})
}

func (h *RestJobHandler) enqueueConfirmation(to, subject, body string) {
	if h.taskClient == nil || to == "" {
		return
	}
	task, err := tasks.NewEmailTask(to, subject, body)
	if err != nil {
		log.Printf("Failed to build confirmation email task for %s: %v", to, err)
		return
	}
	if _, err := h.taskClient.Enqueue(task); err != nil {
		log.Printf("Failed to enqueue confirmation email for %s: %v", to, err)
	}
}
