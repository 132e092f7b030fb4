package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fanfcorp/acp-market/internal/services"
	"github.com/fanfcorp/acp-market/internal/tasks"
)

// RestSubmissionHandler handles REST requests for server submissions.
type RestSubmissionHandler struct {
	submissionService services.ISubmissionService
	taskClient        tasks.Enqueuer // nil disables confirmation emails
}

// NewRestSubmissionHandler creates a new RestSubmissionHandler.
func NewRestSubmissionHandler(submissionService services.ISubmissionService, taskClient tasks.Enqueuer) *RestSubmissionHandler {
	return &RestSubmissionHandler{
		submissionService: submissionService,
		taskClient:        taskClient,
	}
}

// CreateSubmission handles POST /v1/submissions. Free submissions create a
// pending listing immediately; paid ones return a checkout redirect.
func (h *RestSubmissionHandler) CreateSubmission(c *gin.Context) {
	var input services.SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.submissionService.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Failed to create submission")
		return
	}

	h.enqueueConfirmation(result.Submission.SubmitterEmail, result.Submission.Name)

	response := gin.H{
		"success":      true,
		"submissionId": result.Submission.ID,
	}
	if result.Server != nil {
		response["acpServer"] = result.Server
	}
	if result.CheckoutURL != "" {
		response["checkoutUrl"] = result.CheckoutURL
		response["sessionId"] = result.SessionID
	}
	c.JSON(http.StatusCreated, response)
}

// GetSubmissionStatus handles GET /v1/submissions/:id. Callers returning from
// a paid checkout poll this to learn when the listing went live.
func (h *RestSubmissionHandler) GetSubmissionStatus(c *gin.Context) {
	submission, err := h.submissionService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch submission")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissionId":  submission.ID,
		"status":        submission.Status,
		"paymentStatus": submission.PaymentStatus,
		"acpServerId":   submission.ServerID,
	})
}

func (h *RestSubmissionHandler) enqueueConfirmation(to, serverName string) {
	if h.taskClient == nil || to == "" {
		return
	}
	task, err := tasks.NewEmailTask(to,
		"Your ACP server submission was received",
		fmt.Sprintf("Thanks for submitting %q to the directory. We will email you once the listing is reviewed.", serverName))
	if err != nil {
		log.Printf("Failed to build confirmation email task for %s: %v", to, err)
		return
	}
	if _, err := h.taskClient.Enqueue(task); err != nil {
		log.Printf("Failed to enqueue confirmation email for %s: %v", to, err)
	}
}
