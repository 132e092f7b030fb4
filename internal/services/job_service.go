package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/db"
	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/utils"
)

// JobInput carries the fields of an inbound job posting.
type JobInput struct {
	JobTitle       string   `json:"jobTitle"`
	CompanyName    string   `json:"companyName"`
	CompanyLogoURL string   `json:"companyLogoUrl"`
	CompanyWebsite string   `json:"companyWebsite"`
	Location       string   `json:"location"`
	WorkLocation   string   `json:"workLocation"`
	JobType        string   `json:"jobType"`
	SalaryRange    string   `json:"salaryRange"`
	ApplicationURL string   `json:"applicationUrl"`
	Description    string   `json:"description"`
	Requirements   string   `json:"requirements"`
	Benefits       string   `json:"benefits"`
	ContactEmail   string   `json:"contactEmail"`
	Tags           []string `json:"tags"`
}

// JobSearchCriteria narrows the public job board listing.
type JobSearchCriteria struct {
	Query        string
	Location     string
	JobType      string
	WorkLocation string
	Tier         string
	Limit        int
	Offset       int
}

// JobPage is one page of job board results with pagination metadata.
type JobPage struct {
	Jobs       []models.Job `json:"jobs"`
	TotalCount int64        `json:"totalCount"`
	HasMore    bool         `json:"hasMore"`
}

// IJobService defines the interface for job board operations.
type IJobService interface {
	// CreateFree files a posting for manual review; it is not public until
	// an administrator publishes it.
	CreateFree(ctx context.Context, input JobInput) (*models.Job, error)
	// CreateCheckout files a posting awaiting payment and opens a checkout
	// session for the chosen listing type.
	CreateCheckout(ctx context.Context, input JobInput, listingType string) (*models.Job, *payment.CheckoutSession, error)
	// VerifyPayment re-checks a checkout session against the provider and
	// publishes the posting if it has been paid. Safe to call repeatedly.
	VerifyPayment(ctx context.Context, sessionID, jobID string) (*models.Job, error)
	// MarkPaid transitions a posting to published after a confirmed payment.
	// Replays are no-ops.
	MarkPaid(ctx context.Context, jobID, sessionID, paymentRef string) error
	Search(ctx context.Context, criteria JobSearchCriteria) (*JobPage, error)
	FindBySlug(ctx context.Context, slug string) (*models.Job, error)
	FindByID(ctx context.Context, id string) (*models.Job, error)
	ListByStatus(ctx context.Context, status string) ([]models.Job, error)
	Publish(ctx context.Context, id string) (*models.Job, error)
	Delete(ctx context.Context, id string) error
}

const jobsCollection = "jobs"

const jobSlugSuffixLen = 6

type jobService struct {
	db        *mongo.Database
	cfg       *config.Config
	payClient payment.Client // nil when the provider is not configured
}

// NewJobService creates a new JobService. payClient may be nil; paid flows
// then fail with payment.ErrNotConfigured.
func NewJobService(database *mongo.Database, cfg *config.Config, payClient payment.Client) IJobService {
	return &jobService{db: database, cfg: cfg, payClient: payClient}
}

func (s *jobService) validateInput(input *JobInput) error {
	if strings.TrimSpace(input.JobTitle) == "" {
		return NewValidationError("Job title is required")
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return NewValidationError("Company name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return NewValidationError("Description is required")
	}
	if strings.TrimSpace(input.ApplicationURL) == "" {
		return NewValidationError("Application URL is required")
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return NewValidationError("Contact email is required")
	}
	if !utils.ValidEmail(input.ContactEmail) {
		return NewValidationError("Invalid contact email format")
	}

	applicationURL, err := utils.NormalizeURL(input.ApplicationURL)
	if err != nil {
		return NewValidationError("Invalid application URL")
	}
	input.ApplicationURL = applicationURL

	if input.CompanyWebsite != "" {
		website, err := utils.NormalizeURL(input.CompanyWebsite)
		if err != nil {
			return NewValidationError("Invalid company website URL")
		}
		input.CompanyWebsite = website
	}

	input.ContactEmail = strings.ToLower(strings.TrimSpace(input.ContactEmail))
	input.Tags = utils.NormalizeTags(input.Tags)
	return nil
}

// buildJob constructs the common posting document. Lifecycle fields are set
// by the callers.
func (s *jobService) buildJob(input JobInput, now time.Time) *models.Job {
	expiresAt := now.AddDate(0, 0, s.cfg.JobExpiryDays)
	return &models.Job{
		JobTitle:       input.JobTitle,
		CompanyName:    input.CompanyName,
		CompanyLogoURL: input.CompanyLogoURL,
		CompanyWebsite: input.CompanyWebsite,
		Location:       input.Location,
		WorkLocation:   input.WorkLocation,
		JobType:        input.JobType,
		SalaryRange:    input.SalaryRange,
		ApplicationURL: input.ApplicationURL,
		Description:    input.Description,
		Requirements:   input.Requirements,
		Benefits:       input.Benefits,
		ContactEmail:   input.ContactEmail,
		Tags:           input.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      &expiresAt,
	}
}

// insertJob allocates the slug and inserts, retrying with a fresh random
// suffix if the unique index reports a collision.
func (s *jobService) insertJob(ctx context.Context, job *models.Job) error {
	base := utils.Slugify(job.JobTitle + " " + job.CompanyName)
	if base == "" {
		return utils.ErrInvalidName
	}

	return db.Try(func() error {
		job.ID = uuid.NewString()
		job.Slug = fmt.Sprintf("%s-%s", base, utils.RandomSuffix(jobSlugSuffixLen))
		_, err := s.db.Collection(jobsCollection).InsertOne(ctx, job)
		return err
	})
}

func (s *jobService) CreateFree(ctx context.Context, input JobInput) (*models.Job, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := s.buildJob(input, now)
	job.Status = models.JobStatusPending
	job.ListingType = models.JobListingStandard
	job.Tier = models.TierFree
	job.TierRank = models.TierFree.Rank()

	if err := s.insertJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to insert job posting: %w", err)
	}
	return job, nil
}

func (s *jobService) CreateCheckout(ctx context.Context, input JobInput, listingType string) (*models.Job, *payment.CheckoutSession, error) {
	if s.payClient == nil {
		return nil, nil, payment.ErrNotConfigured
	}
	if err := s.validateInput(&input); err != nil {
		return nil, nil, err
	}

	var amount int64
	var tier models.Tier
	var productName string
	switch listingType {
	case models.JobListingStandard:
		amount = s.cfg.JobStandardPrice
		tier = models.TierStandard
		productName = "Standard Job Listing"
	case models.JobListingFeatured:
		amount = s.cfg.JobFeaturedPrice
		tier = models.TierFeatured
		productName = "Featured Job Listing"
	default:
		return nil, nil, NewValidationError(fmt.Sprintf("Unknown listing type: %s", listingType))
	}

	now := time.Now().UTC()
	job := s.buildJob(input, now)
	job.Status = models.JobStatusPaymentPending
	job.ListingType = listingType
	job.Tier = tier
	job.TierRank = tier.Rank()
	job.Featured = listingType == models.JobListingFeatured
	job.Highlighted = listingType == models.JobListingFeatured
	job.PaymentStatus = models.PaymentStatusUnpaid
	job.PaymentAmount = amount

	if err := s.insertJob(ctx, job); err != nil {
		return nil, nil, fmt.Errorf("failed to insert job posting: %w", err)
	}

	session, err := s.payClient.CreateCheckoutSession(ctx, payment.CheckoutParams{
		Mode:               payment.ModePayment,
		ProductName:        productName,
		ProductDescription: fmt.Sprintf("%s at %s", job.JobTitle, job.CompanyName),
		AmountCents:        amount,
		Currency:           "usd",
		CustomerEmail:      job.ContactEmail,
		SuccessURL:         fmt.Sprintf("%s/jobs/payment-success?session_id={CHECKOUT_SESSION_ID}&job_id=%s", s.cfg.BaseURL, job.ID),
		CancelURL:          fmt.Sprintf("%s/jobs/post?canceled=true", s.cfg.BaseURL),
		Metadata: map[string]string{
			"jobId":       job.ID,
			"jobSlug":     job.Slug,
			"listingType": listingType,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create checkout session for job %s: %w", job.ID, err)
	}

	_, err = s.db.Collection(jobsCollection).UpdateOne(ctx,
		bson.M{"_id": job.ID},
		bson.M{"$set": bson.M{"stripe_session_id": session.ID, "updated_at": time.Now().UTC()}})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record checkout session on job %s: %w", job.ID, err)
	}
	job.StripeSessionID = session.ID

	return job, session, nil
}

func (s *jobService) VerifyPayment(ctx context.Context, sessionID, jobID string) (*models.Job, error) {
	if s.payClient == nil {
		return nil, payment.ErrNotConfigured
	}

	session, err := s.payClient.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}

	// The session must reference the posting it is asked to publish; a valid
	// session id for one posting cannot pay for another.
	if ref := session.Metadata["jobId"]; ref != jobID {
		return nil, NewValidationError("Checkout session does not belong to this job")
	}

	if session.PaymentStatus == "paid" {
		if err := s.MarkPaid(ctx, jobID, session.ID, session.PaymentIntentID); err != nil {
			return nil, err
		}
	}

	return s.FindByID(ctx, jobID)
}

func (s *jobService) MarkPaid(ctx context.Context, jobID, sessionID, paymentRef string) error {
	now := time.Now().UTC()
	set := bson.M{
		"status":            models.JobStatusPublished,
		"payment_status":    models.PaymentStatusPaid,
		"stripe_session_id": sessionID,
		"updated_at":        now,
	}
	if paymentRef != "" {
		set["stripe_payment_id"] = paymentRef
	}

	// First transition stamps the publish time. A replay matches the second
	// update instead, so the timestamp never moves.
	first := bson.M{}
	for k, v := range set {
		first[k] = v
	}
	first["published_at"] = now

	result, err := s.db.Collection(jobsCollection).
		UpdateOne(ctx, bson.M{"_id": jobID, "published_at": nil}, bson.M{"$set": first})
	if err != nil {
		return fmt.Errorf("failed to publish job %s: %w", jobID, err)
	}
	if result.MatchedCount > 0 {
		log.Printf("Job %s published after payment (session %s)", jobID, sessionID)
		return nil
	}

	result, err = s.db.Collection(jobsCollection).
		UpdateOne(ctx, bson.M{"_id": jobID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to publish job %s: %w", jobID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *jobService) Search(ctx context.Context, criteria JobSearchCriteria) (*JobPage, error) {
	now := time.Now().UTC()
	filter := bson.M{"status": models.JobStatusPublished}

	// Expiry is enforced at query time; there is no background sweeper.
	conditions := []bson.M{{
		"$or": bson.A{
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": now}},
		},
	}}

	if q := strings.TrimSpace(criteria.Query); q != "" {
		conditions = append(conditions, bson.M{
			"$or": textMatchConditions(q, "job_title", "company_name", "description"),
		})
	}
	filter["$and"] = conditions

	if criteria.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(criteria.Location), Options: "i"}
	}
	if criteria.JobType != "" {
		filter["job_type"] = criteria.JobType
	}
	if criteria.WorkLocation != "" {
		filter["work_location"] = criteria.WorkLocation
	}
	if criteria.Tier != "" {
		filter["tier"] = criteria.Tier
	}

	coll := s.db.Collection(jobsCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	opts := options.Find().
		SetSort(jobRankingOrder()).
		SetSkip(int64(criteria.Offset)).
		SetLimit(int64(criteria.Limit))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := []models.Job{}
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}

	return &JobPage{
		Jobs:       jobs,
		TotalCount: total,
		HasMore:    int64(criteria.Offset+len(jobs)) < total,
	}, nil
}

// jobRankingOrder is the canonical job board ordering: paid placement first,
// then tier, verification, the urgency flags, recency.
func jobRankingOrder() bson.D {
	return bson.D{
		{Key: "featured", Value: -1},
		{Key: "tier_rank", Value: -1},
		{Key: "verified", Value: -1},
		{Key: "urgent", Value: -1},
		{Key: "highlighted", Value: -1},
		{Key: "published_at", Value: -1},
	}
}

// FindBySlug returns a published posting by its public slug.
func (s *jobService) FindBySlug(ctx context.Context, slug string) (*models.Job, error) {
	return s.findOne(ctx, bson.M{"slug": slug, "status": models.JobStatusPublished})
}

func (s *jobService) FindByID(ctx context.Context, id string) (*models.Job, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *jobService) findOne(ctx context.Context, filter bson.M) (*models.Job, error) {
	var job models.Job
	err := s.db.Collection(jobsCollection).FindOne(ctx, filter).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (s *jobService) ListByStatus(ctx context.Context, status string) ([]models.Job, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(jobsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := []models.Job{}
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	return jobs, nil
}

// Publish makes a pending free posting public.
func (s *jobService) Publish(ctx context.Context, id string) (*models.Job, error) {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":       models.JobStatusPublished,
		"published_at": now,
		"updated_at":   now,
	}}

	result, err := s.db.Collection(jobsCollection).
		UpdateOne(ctx, bson.M{"_id": id, "status": models.JobStatusPending}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to publish job %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		existing, findErr := s.FindByID(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		if existing.Status == models.JobStatusPublished {
			return existing, nil
		}
		return nil, NewValidationError(fmt.Sprintf("Job %s is not awaiting review", id))
	}

	return s.FindByID(ctx, id)
}

func (s *jobService) Delete(ctx context.Context, id string) error {
	result, err := s.db.Collection(jobsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
