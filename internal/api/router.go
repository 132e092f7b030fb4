package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fanfcorp/acp-market/internal/api/handlers"
	"github.com/fanfcorp/acp-market/internal/api/middleware"
	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/services"
	"github.com/fanfcorp/acp-market/internal/tasks"
)

// SetupRouter configures and returns the main Gin engine. payClient and
// taskClient may be nil when the corresponding backing service is not
// configured; the affected endpoints degrade explicitly.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, payClient payment.Client, taskClient tasks.Enqueuer) *gin.Engine {
	// Initialize services needed by API handlers
	categoryService := services.NewCategoryService(db)
	serverService := services.NewServerService(db)
	jobService := services.NewJobService(db, cfg, payClient)
	submissionService := services.NewSubmissionService(db, cfg, categoryService, serverService, payClient, taskClient)
	waitlistService := services.NewWaitlistService(db)
	serviceRequestService := services.NewServiceRequestService(db)
	reconciler := services.NewReconciler(jobService, submissionService, serverService, rdb)

	r := gin.Default()

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	serverHandler := handlers.NewRestServerHandler(cfg, serverService, categoryService)
	jobHandler := handlers.NewRestJobHandler(cfg, jobService, taskClient)
	submissionHandler := handlers.NewRestSubmissionHandler(submissionService, taskClient)
	waitlistHandler := handlers.NewRestWaitlistHandler(waitlistService, serviceRequestService)
	webhookHandler := handlers.NewWebhookHandler(payClient, reconciler)
	adminHandler := handlers.NewAdminHandler(cfg, serverService, jobService, submissionService, waitlistService, serviceRequestService)

	v1 := r.Group("/v1")
	{
		// Public directory routes
		v1.GET("/servers", serverHandler.SearchServers)
		v1.GET("/servers/leaderboard", serverHandler.GetLeaderboard)
		v1.GET("/servers/:slug", serverHandler.GetServerBySlug)
		v1.GET("/categories", serverHandler.ListCategories)

		// Job board routes
		v1.GET("/jobs", jobHandler.SearchJobs)
		v1.GET("/jobs/:slug", jobHandler.GetJobBySlug)
		v1.POST("/jobs", jobHandler.CreateJob)
		v1.POST("/jobs/checkout", jobHandler.CreateJobCheckout)
		v1.POST("/jobs/verify-payment", jobHandler.VerifyJobPayment)

		// Submissions, waitlist, service requests
		v1.POST("/submissions", submissionHandler.CreateSubmission)
		v1.GET("/submissions/:id", submissionHandler.GetSubmissionStatus)
		v1.POST("/waitlist", waitlistHandler.JoinWaitlist)
		v1.POST("/service-requests", waitlistHandler.CreateServiceRequest)

		// Payment provider callbacks
		v1.POST("/webhooks/payment", webhookHandler.HandlePaymentWebhook)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Admin routes
		v1.POST("/admin/token", adminHandler.IssueToken)
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AdminAuthMiddleware(cfg.AdminTokenKey))
		{
			adminRequired.GET("/servers", adminHandler.ListServers)
			adminRequired.POST("/servers/:id/approve", adminHandler.ApproveServer)
			adminRequired.POST("/servers/:id/reject", adminHandler.RejectServer)
			adminRequired.GET("/jobs", adminHandler.ListJobs)
			adminRequired.POST("/jobs/:id/publish", adminHandler.PublishJob)
			adminRequired.DELETE("/jobs/:id", adminHandler.DeleteJob)
			adminRequired.GET("/submissions", adminHandler.ListSubmissions)
			adminRequired.GET("/waitlist", adminHandler.ListWaitlist)
			adminRequired.GET("/service-requests", adminHandler.ListServiceRequests)
		}
	}

	return r
}
