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

// ServiceRequestInput carries the fields of an inbound service request.
type ServiceRequestInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Phone       string `json:"phone"`
	ProjectType string `json:"projectType"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
}

// IServiceRequestService defines the interface for service request operations.
type IServiceRequestService interface {
	Create(ctx context.Context, input ServiceRequestInput) (*models.ServiceRequest, error)
	List(ctx context.Context) ([]models.ServiceRequest, error)
}

const serviceRequestsCollection = "service_requests"

type serviceRequestService struct {
	db *mongo.Database
}

// NewServiceRequestService creates a new ServiceRequestService.
func NewServiceRequestService(db *mongo.Database) IServiceRequestService {
	return &serviceRequestService{db: db}
}

func (s *serviceRequestService) Create(ctx context.Context, input ServiceRequestInput) (*models.ServiceRequest, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("Name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, NewValidationError("Email is required")
	}
	if !utils.ValidEmail(input.Email) {
		return nil, NewValidationError("Invalid email format")
	}
	if strings.TrimSpace(input.ProjectType) == "" {
		return nil, NewValidationError("Project type is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, NewValidationError("Project description is required")
	}

	now := time.Now().UTC()
	request := &models.ServiceRequest{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Email:       strings.ToLower(input.Email),
		Company:     input.Company,
		Phone:       input.Phone,
		ProjectType: input.ProjectType,
		Description: input.Description,
		Budget:      input.Budget,
		Timeline:    input.Timeline,
		Status:      models.ServiceRequestStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.db.Collection(serviceRequestsCollection).InsertOne(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to insert service request: %w", err)
	}
	return request, nil
}

func (s *serviceRequestService) List(ctx context.Context) ([]models.ServiceRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(serviceRequestsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ServiceRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode service requests: %w", err)
	}
	return requests, nil
}
