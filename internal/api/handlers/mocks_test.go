package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/services"
)

// --- Mocks ---

// MockServerService implements services.IServerService
type MockServerService struct {
	mock.Mock
}

func (m *MockServerService) CreateFromSubmission(ctx context.Context, sub *models.Submission, tier models.Tier) (*models.Server, error) {
	args := m.Called(ctx, sub, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerService) FindBySlug(ctx context.Context, slug string) (*models.Server, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerService) FindByID(ctx context.Context, id string) (*models.Server, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerService) Search(ctx context.Context, criteria services.ServerSearchCriteria) (*services.ServerPage, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ServerPage), args.Error(1)
}

func (m *MockServerService) Leaderboard(ctx context.Context, limit int) ([]models.Server, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Server), args.Error(1)
}

func (m *MockServerService) ListByStatus(ctx context.Context, status string) ([]models.Server, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Server), args.Error(1)
}

func (m *MockServerService) Approve(ctx context.Context, id string) (*models.Server, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerService) Reject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServerService) ApplyTier(ctx context.Context, id string, tier models.Tier) error {
	args := m.Called(ctx, id, tier)
	return args.Error(0)
}

func (m *MockServerService) SetLogo(ctx context.Context, id, key, url string) error {
	args := m.Called(ctx, id, key, url)
	return args.Error(0)
}

// MockJobService implements services.IJobService
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) CreateFree(ctx context.Context, input services.JobInput) (*models.Job, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) CreateCheckout(ctx context.Context, input services.JobInput, listingType string) (*models.Job, *payment.CheckoutSession, error) {
	args := m.Called(ctx, input, listingType)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Job), args.Get(1).(*payment.CheckoutSession), args.Error(2)
}

func (m *MockJobService) VerifyPayment(ctx context.Context, sessionID, jobID string) (*models.Job, error) {
	args := m.Called(ctx, sessionID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) MarkPaid(ctx context.Context, jobID, sessionID, paymentRef string) error {
	args := m.Called(ctx, jobID, sessionID, paymentRef)
	return args.Error(0)
}

func (m *MockJobService) Search(ctx context.Context, criteria services.JobSearchCriteria) (*services.JobPage, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.JobPage), args.Error(1)
}

func (m *MockJobService) FindBySlug(ctx context.Context, slug string) (*models.Job, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) FindByID(ctx context.Context, id string) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) ListByStatus(ctx context.Context, status string) ([]models.Job, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockJobService) Publish(ctx context.Context, id string) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubmissionService implements services.ISubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Create(ctx context.Context, input services.SubmissionInput) (*services.SubmissionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmissionResult), args.Error(1)
}

func (m *MockSubmissionService) ApprovePaid(ctx context.Context, submissionID string, tier models.Tier, sessionID, paymentRef string) (*models.Server, error) {
	args := m.Called(ctx, submissionID, tier, sessionID, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockSubmissionService) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) List(ctx context.Context) ([]models.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

// MockWaitlistService implements services.IWaitlistService
type MockWaitlistService struct {
	mock.Mock
}

func (m *MockWaitlistService) Join(ctx context.Context, email, tools string, consent bool) (*models.WaitlistEntry, bool, error) {
	args := m.Called(ctx, email, tools, consent)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.WaitlistEntry), args.Bool(1), args.Error(2)
}

func (m *MockWaitlistService) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WaitlistEntry), args.Error(1)
}

// MockServiceRequestService implements services.IServiceRequestService
type MockServiceRequestService struct {
	mock.Mock
}

func (m *MockServiceRequestService) Create(ctx context.Context, input services.ServiceRequestInput) (*models.ServiceRequest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestService) List(ctx context.Context) ([]models.ServiceRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceRequest), args.Error(1)
}

// MockCategoryService implements services.ICategoryService
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryService) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) FindByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) Upsert(ctx context.Context, category *models.Category) (*models.Category, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

// MockPayClient implements payment.Client
type MockPayClient struct {
	mock.Mock
}

func (m *MockPayClient) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockPayClient) RetrieveSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockPayClient) ConstructEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

// MockEnqueuer implements tasks.Enqueuer
type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	mockArgs := []interface{}{task}
	for _, opt := range opts {
		mockArgs = append(mockArgs, opt)
	}
	args := m.Called(mockArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
