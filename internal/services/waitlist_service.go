package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/utils"
)

// IWaitlistService defines the interface for waitlist operations.
type IWaitlistService interface {
	// Join creates a waitlist entry, or updates the existing one when the
	// email has already signed up. Returns the entry and whether it was
	// newly created.
	Join(ctx context.Context, email, tools string, consent bool) (*models.WaitlistEntry, bool, error)
	List(ctx context.Context) ([]models.WaitlistEntry, error)
}

const waitlistCollection = "waitlist"

type waitlistService struct {
	db *mongo.Database
}

// NewWaitlistService creates a new WaitlistService.
func NewWaitlistService(db *mongo.Database) IWaitlistService {
	return &waitlistService{db: db}
}

func (s *waitlistService) Join(ctx context.Context, email, tools string, consent bool) (*models.WaitlistEntry, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, NewValidationError("Email is required")
	}
	if !utils.ValidEmail(email) {
		return nil, false, NewValidationError("Invalid email format")
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"tools":      tools,
			"consent":    consent,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"email":      email,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var entry models.WaitlistEntry
	err := s.db.Collection(waitlistCollection).
		FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).
		Decode(&entry)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert waitlist entry for %s: %w", email, err)
	}

	// Mongo stores timestamps at millisecond precision, so compare there.
	created := entry.CreatedAt.UnixMilli() == now.UnixMilli()
	return &entry, created, nil
}

func (s *waitlistService) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(waitlistCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.WaitlistEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}
	return entries, nil
}
