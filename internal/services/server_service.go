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

	"github.com/fanfcorp/acp-market/internal/db"
	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/utils"
)

// ServerSearchCriteria narrows the public server directory listing.
type ServerSearchCriteria struct {
	Query        string
	CategorySlug string
	Limit        int
	Offset       int
}

// ServerPage is one page of directory results with pagination metadata.
type ServerPage struct {
	Servers    []models.Server `json:"servers"`
	TotalCount int64           `json:"totalCount"`
	HasMore    bool            `json:"hasMore"`
}

// IServerService defines the interface for ACP server directory operations.
type IServerService interface {
	// CreateFromSubmission materialises a directory entry for a submission.
	// Free-tier entries start pending; paid tiers go live immediately.
	CreateFromSubmission(ctx context.Context, sub *models.Submission, tier models.Tier) (*models.Server, error)
	FindBySlug(ctx context.Context, slug string) (*models.Server, error)
	FindByID(ctx context.Context, id string) (*models.Server, error)
	Search(ctx context.Context, criteria ServerSearchCriteria) (*ServerPage, error)
	Leaderboard(ctx context.Context, limit int) ([]models.Server, error)
	ListByStatus(ctx context.Context, status string) ([]models.Server, error)
	Approve(ctx context.Context, id string) (*models.Server, error)
	Reject(ctx context.Context, id string) error
	ApplyTier(ctx context.Context, id string, tier models.Tier) error
	SetLogo(ctx context.Context, id, key, url string) error
}

const serversCollection = "servers"

// maxSlugAttempts bounds the counter-suffix probe when allocating a slug.
const maxSlugAttempts = 50

type serverService struct {
	db *mongo.Database
}

// NewServerService creates a new ServerService.
func NewServerService(database *mongo.Database) IServerService {
	return &serverService{db: database}
}

// tierFlags derives the visibility perks a tier grants. Featured placement is
// part of every paid plan; the profile perks come with rank one and above.
func tierFlags(tier models.Tier) (featured, customProfile, leadGen, analytics bool) {
	rank := tier.Rank()
	paid := rank >= 1
	return paid, paid, paid, paid
}

func (s *serverService) CreateFromSubmission(ctx context.Context, sub *models.Submission, tier models.Tier) (*models.Server, error) {
	if !tier.Valid() {
		return nil, NewValidationError(fmt.Sprintf("Unknown tier: %s", tier))
	}

	now := time.Now().UTC()
	featured, customProfile, leadGen, analytics := tierFlags(tier)

	server := &models.Server{
		Name:              sub.Name,
		Description:       sub.Description,
		Website:           sub.Website,
		GithubURL:         sub.GithubURL,
		LogoURL:           sub.LogoURL,
		PrimaryCategoryID: sub.CategoryID,
		Tags:              utils.NormalizeTags(sub.Tags),
		ProtocolSupport:   sub.ProtocolSupport,
		APIEndpoint:       sub.APIEndpoint,
		APIKeyRequired:    sub.APIKeyRequired,
		SubmitterName:     sub.SubmitterName,
		SubmitterEmail:    sub.SubmitterEmail,
		SubmitterCompany:  sub.SubmitterCompany,
		Tier:              tier,
		TierRank:          tier.Rank(),
		Featured:          featured,
		CustomProfile:     customProfile,
		LeadGeneration:    leadGen,
		AnalyticsEnabled:  analytics,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if tier.Rank() >= 1 {
		server.Status = models.ServerStatusActive
		server.Verified = true
		server.ApprovedAt = &now
		server.PublishedAt = &now
	} else {
		server.Status = models.ServerStatusPending
	}

	// The unique index on slug is the arbiter; on a duplicate-key race the
	// retry re-probes and picks the next counter suffix.
	err := db.Try(func() error {
		slug, allocErr := s.allocateSlug(ctx, sub.Name)
		if allocErr != nil {
			return allocErr
		}
		server.ID = uuid.NewString()
		server.Slug = slug
		_, insertErr := s.db.Collection(serversCollection).InsertOne(ctx, server)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert server %s: %w", sub.Name, err)
	}
	return server, nil
}

// allocateSlug turns a display name into a unique slug. The base form is
// tried first; collisions get "-1", "-2", ... appended.
func (s *serverService) allocateSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		return "", utils.ErrInvalidName
	}

	slug := base
	for attempt := 1; ; attempt++ {
		count, err := s.db.Collection(serversCollection).CountDocuments(ctx, bson.M{"slug": slug})
		if err != nil {
			return "", fmt.Errorf("failed to probe slug %s: %w", slug, err)
		}
		if count == 0 {
			return slug, nil
		}
		if attempt > maxSlugAttempts {
			return "", fmt.Errorf("could not allocate a slug for %q after %d attempts", name, maxSlugAttempts)
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
}

// FindBySlug returns an active server by its public slug.
func (s *serverService) FindBySlug(ctx context.Context, slug string) (*models.Server, error) {
	return s.findOne(ctx, bson.M{"slug": slug, "status": models.ServerStatusActive})
}

func (s *serverService) FindByID(ctx context.Context, id string) (*models.Server, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *serverService) findOne(ctx context.Context, filter bson.M) (*models.Server, error) {
	var server models.Server
	err := s.db.Collection(serversCollection).FindOne(ctx, filter).Decode(&server)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find server: %w", err)
	}
	return &server, nil
}

func (s *serverService) Search(ctx context.Context, criteria ServerSearchCriteria) (*ServerPage, error) {
	filter := bson.M{"status": models.ServerStatusActive}

	if criteria.CategorySlug != "" {
		var category models.Category
		err := s.db.Collection(categoriesCollection).
			FindOne(ctx, bson.M{"slug": criteria.CategorySlug}).
			Decode(&category)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// An unknown category matches nothing rather than erroring.
				return &ServerPage{Servers: []models.Server{}}, nil
			}
			return nil, fmt.Errorf("failed to resolve category %s: %w", criteria.CategorySlug, err)
		}
		filter["primary_category"] = category.ID
	}

	if q := strings.TrimSpace(criteria.Query); q != "" {
		filter["$or"] = textMatchConditions(q, "name", "description")
	}

	coll := s.db.Collection(serversCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count servers: %w", err)
	}

	opts := options.Find().
		SetSort(serverRankingOrder()).
		SetSkip(int64(criteria.Offset)).
		SetLimit(int64(criteria.Limit))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search servers: %w", err)
	}
	defer cursor.Close(ctx)

	servers := []models.Server{}
	if err = cursor.All(ctx, &servers); err != nil {
		return nil, fmt.Errorf("failed to decode servers: %w", err)
	}

	return &ServerPage{
		Servers:    servers,
		TotalCount: total,
		HasMore:    int64(criteria.Offset+len(servers)) < total,
	}, nil
}

// serverRankingOrder is the canonical directory ordering: paid placement
// first, then tier level, verification, community stars, recency.
func serverRankingOrder() bson.D {
	return bson.D{
		{Key: "featured", Value: -1},
		{Key: "tier_rank", Value: -1},
		{Key: "verified", Value: -1},
		{Key: "stars", Value: -1},
		{Key: "published_at", Value: -1},
	}
}

// textMatchConditions builds the free-text $or clause shared by the search
// endpoints: a case-insensitive substring match over the given fields, plus a
// tag match against the tokenized query.
func textMatchConditions(query string, fields ...string) bson.A {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	conditions := bson.A{}
	for _, field := range fields {
		conditions = append(conditions, bson.M{field: re})
	}

	tokens := utils.TokenizeQuery(query)
	if whole := strings.ToLower(strings.TrimSpace(query)); whole != "" {
		found := false
		for _, t := range tokens {
			if t == whole {
				found = true
				break
			}
		}
		if !found {
			tokens = append(tokens, whole)
		}
	}
	if len(tokens) > 0 {
		conditions = append(conditions, bson.M{"tags": bson.M{"$in": tokens}})
	}
	return conditions
}

// Leaderboard returns the most-starred active servers.
func (s *serverService) Leaderboard(ctx context.Context, limit int) ([]models.Server, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "stars", Value: -1},
			{Key: "downloads", Value: -1},
			{Key: "published_at", Value: -1},
		}).
		SetLimit(int64(limit))
	cursor, err := s.db.Collection(serversCollection).
		Find(ctx, bson.M{"status": models.ServerStatusActive}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	servers := []models.Server{}
	if err = cursor.All(ctx, &servers); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return servers, nil
}

func (s *serverService) ListByStatus(ctx context.Context, status string) ([]models.Server, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(serversCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer cursor.Close(ctx)

	servers := []models.Server{}
	if err = cursor.All(ctx, &servers); err != nil {
		return nil, fmt.Errorf("failed to decode servers: %w", err)
	}
	return servers, nil
}

// Approve moves a pending server into the public directory.
func (s *serverService) Approve(ctx context.Context, id string) (*models.Server, error) {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":       models.ServerStatusActive,
		"approved_at":  now,
		"published_at": now,
		"updated_at":   now,
	}}

	result, err := s.db.Collection(serversCollection).
		UpdateOne(ctx, bson.M{"_id": id, "status": models.ServerStatusPending}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to approve server %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		// Distinguish "missing" from "already active" for the caller.
		existing, findErr := s.FindByID(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		if existing.Status == models.ServerStatusActive {
			return existing, nil
		}
		return nil, NewValidationError(fmt.Sprintf("Server %s is not awaiting approval", id))
	}

	return s.FindByID(ctx, id)
}

// Reject removes a pending server outright. There is no rejected state.
func (s *serverService) Reject(ctx context.Context, id string) error {
	result, err := s.db.Collection(serversCollection).
		DeleteOne(ctx, bson.M{"_id": id, "status": models.ServerStatusPending})
	if err != nil {
		return fmt.Errorf("failed to reject server %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyTier moves a server onto the given tier, adjusting the derived
// placement flags. Applying the same tier twice is a no-op.
func (s *serverService) ApplyTier(ctx context.Context, id string, tier models.Tier) error {
	if !tier.Valid() {
		return NewValidationError(fmt.Sprintf("Unknown tier: %s", tier))
	}

	featured, customProfile, leadGen, analytics := tierFlags(tier)
	set := bson.M{
		"tier":              tier,
		"tier_rank":         tier.Rank(),
		"featured":          featured,
		"custom_profile":    customProfile,
		"lead_generation":   leadGen,
		"analytics_enabled": analytics,
		"updated_at":        time.Now().UTC(),
	}
	if tier.Rank() >= 1 {
		set["verified"] = true
	}

	result, err := s.db.Collection(serversCollection).
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to apply tier %s to server %s: %w", tier, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	log.Printf("Server %s moved to tier %s", id, tier)
	return nil
}

// SetLogo records the re-hosted logo: the storage key and the public URL the
// listing serves from now on instead of the submitted hot-link.
func (s *serverService) SetLogo(ctx context.Context, id, key, url string) error {
	result, err := s.db.Collection(serversCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"logo_key": key, "logo_url": url, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to set logo for server %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
