package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/tasks"
	"github.com/fanfcorp/acp-market/internal/utils"
)

// SubmissionInput carries the fields of an inbound server submission.
type SubmissionInput struct {
	SubmitterName    string   `json:"submitterName"`
	SubmitterEmail   string   `json:"submitterEmail"`
	SubmitterCompany string   `json:"submitterCompany"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Website          string   `json:"website"`
	GithubURL        string   `json:"githubUrl"`
	LogoURL          string   `json:"logoUrl"`
	CategorySlug     string   `json:"category"`
	Tags             []string `json:"tags"`
	ProtocolSupport  []string `json:"protocolSupport"`
	APIEndpoint      string   `json:"apiEndpoint"`
	APIKeyRequired   bool     `json:"apiKeyRequired"`
	Tier             string   `json:"tier"`
}

// SubmissionResult is the outcome of filing a submission. Free submissions
// carry the listing that was created immediately; paid ones carry the
// checkout redirect instead.
type SubmissionResult struct {
	Submission  *models.Submission
	Server      *models.Server
	CheckoutURL string
	SessionID   string
}

// ISubmissionService defines the interface for server submission operations.
type ISubmissionService interface {
	Create(ctx context.Context, input SubmissionInput) (*SubmissionResult, error)
	// ApprovePaid finalises a paid submission after its checkout completed:
	// records the payment, creates the live listing and links it back.
	// Replays return the already-linked listing.
	ApprovePaid(ctx context.Context, submissionID string, tier models.Tier, sessionID, paymentRef string) (*models.Server, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
}

const submissionsCollection = "submissions"

type submissionService struct {
	db         *mongo.Database
	cfg        *config.Config
	categories ICategoryService
	servers    IServerService
	payClient  payment.Client // nil when the provider is not configured
	taskClient tasks.Enqueuer // nil disables background work
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(database *mongo.Database, cfg *config.Config, categories ICategoryService, servers IServerService, payClient payment.Client, taskClient tasks.Enqueuer) ISubmissionService {
	return &submissionService{
		db:         database,
		cfg:        cfg,
		categories: categories,
		servers:    servers,
		payClient:  payClient,
		taskClient: taskClient,
	}
}

func (s *submissionService) Create(ctx context.Context, input SubmissionInput) (*SubmissionResult, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("Server name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, NewValidationError("Description is required")
	}
	if strings.TrimSpace(input.GithubURL) == "" {
		return nil, NewValidationError("GitHub URL is required")
	}
	if strings.TrimSpace(input.SubmitterName) == "" {
		return nil, NewValidationError("Submitter name is required")
	}
	if !utils.ValidEmail(input.SubmitterEmail) {
		return nil, NewValidationError("Invalid submitter email format")
	}

	tier := models.Tier(input.Tier)
	if input.Tier == "" {
		tier = models.TierFree
	}
	if !tier.Valid() {
		return nil, NewValidationError(fmt.Sprintf("Unknown tier: %s", input.Tier))
	}

	githubURL, err := utils.NormalizeURL(input.GithubURL)
	if err != nil {
		return nil, NewValidationError("Invalid GitHub URL")
	}
	website := ""
	if input.Website != "" {
		website, err = utils.NormalizeURL(input.Website)
		if err != nil {
			return nil, NewValidationError("Invalid website URL")
		}
	}
	logoURL := ""
	if input.LogoURL != "" {
		logoURL, err = utils.NormalizeURL(input.LogoURL)
		if err != nil {
			return nil, NewValidationError("Invalid logo URL")
		}
	}

	categoryID := ""
	if input.CategorySlug != "" {
		category, err := s.categories.FindBySlug(ctx, input.CategorySlug)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, NewValidationError(fmt.Sprintf("Unknown category: %s", input.CategorySlug))
			}
			return nil, err
		}
		categoryID = category.ID
	}

	// Paid tiers need the provider up front; fail before writing anything.
	if tier.Rank() >= 1 && s.payClient == nil {
		return nil, payment.ErrNotConfigured
	}

	now := time.Now().UTC()
	submission := &models.Submission{
		ID:               uuid.NewString(),
		SubmitterName:    input.SubmitterName,
		SubmitterEmail:   strings.ToLower(strings.TrimSpace(input.SubmitterEmail)),
		SubmitterCompany: input.SubmitterCompany,
		Name:             input.Name,
		Description:      input.Description,
		Website:          website,
		GithubURL:        githubURL,
		LogoURL:          logoURL,
		CategoryID:       categoryID,
		Tags:             utils.NormalizeTags(input.Tags),
		ProtocolSupport:  input.ProtocolSupport,
		APIEndpoint:      input.APIEndpoint,
		APIKeyRequired:   input.APIKeyRequired,
		SelectedTier:     tier,
		Status:           models.SubmissionStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := s.db.Collection(submissionsCollection).InsertOne(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	if tier.Rank() == 0 {
		return s.finishFree(ctx, submission)
	}
	return s.startCheckout(ctx, submission, tier)
}

// finishFree creates the pending listing right away. If that fails the
// submission is still on file for manual processing, so the filing itself
// is reported as successful.
func (s *submissionService) finishFree(ctx context.Context, submission *models.Submission) (*SubmissionResult, error) {
	server, err := s.servers.CreateFromSubmission(ctx, submission, models.TierFree)
	if err != nil {
		log.Printf("Submission %s recorded but listing creation failed: %v", submission.ID, err)
		return &SubmissionResult{Submission: submission}, nil
	}

	if err := s.linkServer(ctx, submission.ID, server.ID, nil); err != nil {
		log.Printf("Failed to link server %s to submission %s: %v", server.ID, submission.ID, err)
	}
	submission.ServerID = server.ID
	s.enqueueLogoTask(server.ID, submission.LogoURL)

	return &SubmissionResult{Submission: submission, Server: server}, nil
}

// enqueueLogoTask queues logo re-hosting for a freshly created listing.
// Failures are logged; the listing works without a re-hosted logo.
func (s *submissionService) enqueueLogoTask(serverID, logoURL string) {
	if s.taskClient == nil || logoURL == "" {
		return
	}
	task, err := tasks.NewLogoTask(serverID, logoURL)
	if err != nil {
		log.Printf("Failed to build logo task for server %s: %v", serverID, err)
		return
	}
	if _, err := s.taskClient.Enqueue(task); err != nil {
		log.Printf("Failed to enqueue logo task for server %s: %v", serverID, err)
	}
}

func (s *submissionService) startCheckout(ctx context.Context, submission *models.Submission, tier models.Tier) (*SubmissionResult, error) {
	var amount int64
	var productName string
	switch tier {
	case models.TierPro, models.TierPremium:
		amount = s.cfg.TierProPrice
		productName = "ACP Market Pro Listing"
	case models.TierFeatured:
		amount = s.cfg.TierFeaturedPrice
		productName = "ACP Market Featured Listing"
	default:
		return nil, NewValidationError(fmt.Sprintf("Tier %s has no subscription price", tier))
	}

	session, err := s.payClient.CreateCheckoutSession(ctx, payment.CheckoutParams{
		Mode:               payment.ModeSubscription,
		ProductName:        productName,
		ProductDescription: fmt.Sprintf("Monthly %s listing for %s", tier, submission.Name),
		AmountCents:        amount,
		Currency:           "usd",
		CustomerEmail:      submission.SubmitterEmail,
		SuccessURL:         fmt.Sprintf("%s/submit/success?session_id={CHECKOUT_SESSION_ID}", s.cfg.BaseURL),
		CancelURL:          fmt.Sprintf("%s/submit?canceled=true", s.cfg.BaseURL),
		Metadata: map[string]string{
			"submissionId":   submission.ID,
			"tier":           string(tier),
			"submitterEmail": submission.SubmitterEmail,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session for submission %s: %w", submission.ID, err)
	}

	_, err = s.db.Collection(submissionsCollection).UpdateOne(ctx,
		bson.M{"_id": submission.ID},
		bson.M{"$set": bson.M{
			"stripe_session_id": session.ID,
			"payment_status":    models.PaymentStatusUnpaid,
			"amount":            amount,
			"updated_at":        time.Now().UTC(),
		}})
	if err != nil {
		return nil, fmt.Errorf("failed to record checkout session on submission %s: %w", submission.ID, err)
	}
	submission.StripeSessionID = session.ID
	submission.PaymentStatus = models.PaymentStatusUnpaid
	submission.Amount = amount

	return &SubmissionResult{
		Submission:  submission,
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	}, nil
}

func (s *submissionService) ApprovePaid(ctx context.Context, submissionID string, tier models.Tier, sessionID, paymentRef string) (*models.Server, error) {
	submission, err := s.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	// A replayed completion event finds the listing already linked.
	if submission.ServerID != "" {
		return s.servers.FindByID(ctx, submission.ServerID)
	}

	if !tier.Valid() || tier.Rank() == 0 {
		tier = submission.SelectedTier
	}

	server, err := s.servers.CreateFromSubmission(ctx, submission, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing for submission %s: %w", submissionID, err)
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":         models.SubmissionStatusApproved,
		"payment_status": models.PaymentStatusPaid,
		"reviewed_at":    now,
	}
	if sessionID != "" {
		set["stripe_session_id"] = sessionID
	}
	if paymentRef != "" {
		set["stripe_payment_id"] = paymentRef
	}
	if err := s.linkServer(ctx, submissionID, server.ID, set); err != nil {
		return nil, err
	}
	s.enqueueLogoTask(server.ID, submission.LogoURL)

	log.Printf("Submission %s approved on tier %s, listing %s live", submissionID, tier, server.Slug)
	return server, nil
}

// linkServer records the created listing on the submission, optionally along
// with extra fields to set in the same write.
func (s *submissionService) linkServer(ctx context.Context, submissionID, serverID string, extra bson.M) error {
	set := bson.M{
		"server_id":  serverID,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		set[k] = v
	}

	result, err := s.db.Collection(submissionsCollection).
		UpdateOne(ctx, bson.M{"_id": submissionID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update submission %s: %w", submissionID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *submissionService) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Collection(submissionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&submission)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}
	return &submission, nil
}

func (s *submissionService) List(ctx context.Context) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(submissionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer cursor.Close(ctx)

	submissions := []models.Submission{}
	if err = cursor.All(ctx, &submissions); err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}
	return submissions, nil
}
