package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fanfcorp/acp-market/internal/models"
)

// ICategoryService defines the interface for category taxonomy operations.
type ICategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Upsert(ctx context.Context, category *models.Category) (*models.Category, error)
}

const categoriesCollection = "categories"

type categoryService struct {
	db *mongo.Database
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *mongo.Database) ICategoryService {
	return &categoryService{db: db}
}

// List returns all categories ordered by their display sort order.
func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})
	cursor, err := s.db.Collection(categoriesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *categoryService) FindByID(ctx context.Context, id string) (*models.Category, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *categoryService) findOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	var category models.Category
	err := s.db.Collection(categoriesCollection).FindOne(ctx, filter).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

// Upsert creates or updates a category keyed by slug. Used by the seeder so
// re-running it refreshes display metadata without duplicating nodes.
func (s *categoryService) Upsert(ctx context.Context, category *models.Category) (*models.Category, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        category.Name,
			"description": category.Description,
			"icon":        category.Icon,
			"color":       category.Color,
			"sort_order":  category.SortOrder,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"slug":       category.Slug,
			"children":   []string{},
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.Category
	err := s.db.Collection(categoriesCollection).
		FindOneAndUpdate(ctx, bson.M{"slug": category.Slug}, update, opts).
		Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert category %s: %w", category.Slug, err)
	}
	return &out, nil
}
