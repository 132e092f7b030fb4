package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/utils"
)

func setupTestDBReconciler(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "jobs", "submissions", "servers", "categories")
}

func newReconcilerFixture(t *testing.T, dbName string) (*Reconciler, IJobService, ISubmissionService, IServerService, *fakePayClient) {
	db := setupTestDBReconciler(t, dbName)
	payClient := newFakePayClient()
	categories := NewCategoryService(db)
	servers := NewServerService(db)
	jobs := NewJobService(db, testConfig(), payClient)
	submissions := NewSubmissionService(db, testConfig(), categories, servers, payClient, nil)
	return NewReconciler(jobs, submissions, servers, nil), jobs, submissions, servers, payClient
}

func checkoutEvent(t *testing.T, id string, session payment.SessionObject) *payment.Event {
	object, err := json.Marshal(session)
	require.NoError(t, err)
	return &payment.Event{ID: id, Type: payment.EventCheckoutCompleted, Object: object}
}

func subscriptionEvent(t *testing.T, id, eventType string, sub payment.SubscriptionObject) *payment.Event {
	object, err := json.Marshal(sub)
	require.NoError(t, err)
	return &payment.Event{ID: id, Type: eventType, Object: object}
}

func TestReconciler_CheckoutCompleted_Job(t *testing.T) {
	reconciler, jobs, _, _, _ := newReconcilerFixture(t, "testdb_reconciler_job")
	ctx := context.Background()

	job, session, err := jobs.CreateCheckout(ctx, testJobInput(), models.JobListingStandard)
	require.NoError(t, err)

	ev := checkoutEvent(t, "evt_1", payment.SessionObject{
		ID:            session.ID,
		Mode:          string(payment.ModePayment),
		PaymentIntent: "pi_evt",
		PaymentStatus: "paid",
		Metadata:      map[string]string{"jobId": job.ID},
	})
	require.NoError(t, reconciler.HandleEvent(ctx, ev))

	published, err := jobs.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPublished, published.Status)
	assert.Equal(t, "pi_evt", published.StripePaymentID)
	require.NotNil(t, published.PublishedAt)
	firstPublishedAt := *published.PublishedAt

	// A redelivered event is acknowledged without moving the publish time.
	require.NoError(t, reconciler.HandleEvent(ctx, ev))
	replayed, err := jobs.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPublishedAt.Unix(), replayed.PublishedAt.Unix())
}

func TestReconciler_CheckoutCompleted_Submission(t *testing.T) {
	reconciler, _, submissions, servers, _ := newReconcilerFixture(t, "testdb_reconciler_submission")
	ctx := context.Background()

	input := testSubmissionInput()
	input.Tier = string(models.TierPro)
	result, err := submissions.Create(ctx, input)
	require.NoError(t, err)

	ev := checkoutEvent(t, "evt_2", payment.SessionObject{
		ID:       result.SessionID,
		Mode:     string(payment.ModeSubscription),
		Metadata: map[string]string{"submissionId": result.Submission.ID, "tier": string(models.TierPro)},
	})
	require.NoError(t, reconciler.HandleEvent(ctx, ev))

	stored, err := submissions.FindByID(ctx, result.Submission.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusApproved, stored.Status)
	require.NotEmpty(t, stored.ServerID)

	server, err := servers.FindByID(ctx, stored.ServerID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, server.Tier)
	assert.Equal(t, models.ServerStatusActive, server.Status)

	// Redelivery does not create a second listing.
	require.NoError(t, reconciler.HandleEvent(ctx, ev))
	active, err := servers.ListByStatus(ctx, models.ServerStatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestReconciler_CheckoutCompleted_UnknownReferences(t *testing.T) {
	reconciler, _, _, _, _ := newReconcilerFixture(t, "testdb_reconciler_unknown")
	ctx := context.Background()

	// Unknown or missing local ids are acknowledged, not retried forever.
	tests := []payment.SessionObject{
		{ID: "cs_x", Mode: string(payment.ModePayment), Metadata: map[string]string{"jobId": "missing"}},
		{ID: "cs_x", Mode: string(payment.ModePayment)},
		{ID: "cs_x", Mode: string(payment.ModeSubscription), Metadata: map[string]string{"submissionId": "missing"}},
		{ID: "cs_x", Mode: string(payment.ModeSubscription)},
		{ID: "cs_x", Mode: "setup"},
	}
	for i, session := range tests {
		ev := checkoutEvent(t, "evt_unknown", session)
		assert.NoError(t, reconciler.HandleEvent(ctx, ev), "case %d", i)
	}
}

func TestReconciler_SubscriptionLifecycle(t *testing.T) {
	reconciler, _, _, servers, _ := newReconcilerFixture(t, "testdb_reconciler_subscription")
	ctx := context.Background()

	server, err := servers.CreateFromSubmission(ctx, testSubmission("Sub Agent"), models.TierPro)
	require.NoError(t, err)

	// An upgrade pushed through the provider portal.
	ev := subscriptionEvent(t, "evt_up", payment.EventSubscriptionUpdated, payment.SubscriptionObject{
		ID:       "sub_1",
		Status:   "active",
		Metadata: map[string]string{"acpServerId": server.ID, "tier": string(models.TierFeatured)},
	})
	require.NoError(t, reconciler.HandleEvent(ctx, ev))

	upgraded, err := servers.FindByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFeatured, upgraded.Tier)

	// A lapsed subscription drops the listing to the free tier.
	ev = subscriptionEvent(t, "evt_lapse", payment.EventSubscriptionUpdated, payment.SubscriptionObject{
		ID:       "sub_1",
		Status:   "canceled",
		Metadata: map[string]string{"acpServerId": server.ID, "tier": string(models.TierFeatured)},
	})
	require.NoError(t, reconciler.HandleEvent(ctx, ev))

	lapsed, err := servers.FindByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, lapsed.Tier)
	assert.False(t, lapsed.Featured)

	// Deletion behaves the same.
	require.NoError(t, reconciler.HandleEvent(ctx, subscriptionEvent(t, "evt_up2", payment.EventSubscriptionUpdated, payment.SubscriptionObject{
		ID:       "sub_1",
		Status:   "active",
		Metadata: map[string]string{"acpServerId": server.ID, "tier": string(models.TierPro)},
	})))
	require.NoError(t, reconciler.HandleEvent(ctx, subscriptionEvent(t, "evt_del", payment.EventSubscriptionDeleted, payment.SubscriptionObject{
		ID:       "sub_1",
		Status:   "canceled",
		Metadata: map[string]string{"acpServerId": server.ID},
	})))

	deleted, err := servers.FindByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, deleted.Tier)

	// Events without a listing reference, or with an unknown one, are acked.
	assert.NoError(t, reconciler.HandleEvent(ctx, subscriptionEvent(t, "evt_noref", payment.EventSubscriptionUpdated, payment.SubscriptionObject{
		ID:     "sub_2",
		Status: "active",
	})))
	assert.NoError(t, reconciler.HandleEvent(ctx, subscriptionEvent(t, "evt_ghost", payment.EventSubscriptionDeleted, payment.SubscriptionObject{
		ID:       "sub_3",
		Status:   "canceled",
		Metadata: map[string]string{"acpServerId": "missing"},
	})))
}

func setupRedis(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	require.NoError(t, rdb.FlushAll(context.Background()).Err(), "Failed to flush Redis")
	return rdb
}

// markPaidRecorder counts MarkPaid calls and can be told to fail.
type markPaidRecorder struct {
	IJobService
	calls int
	err   error
}

func (r *markPaidRecorder) MarkPaid(ctx context.Context, jobID, sessionID, paymentRef string) error {
	r.calls++
	return r.err
}

func TestReconciler_EventDedup(t *testing.T) {
	rdb := setupRedis(t)
	defer rdb.Close()
	ctx := context.Background()

	jobs := &markPaidRecorder{}
	reconciler := NewReconciler(jobs, nil, nil, rdb)

	ev := checkoutEvent(t, "evt_dedup", payment.SessionObject{
		ID:       "cs_dedup",
		Mode:     string(payment.ModePayment),
		Metadata: map[string]string{"jobId": "job-1"},
	})

	require.NoError(t, reconciler.HandleEvent(ctx, ev))
	assert.Equal(t, 1, jobs.calls)

	// The second delivery is absorbed by the claim.
	require.NoError(t, reconciler.HandleEvent(ctx, ev))
	assert.Equal(t, 1, jobs.calls)
}

func TestReconciler_EventDedup_ReleasedOnFailure(t *testing.T) {
	rdb := setupRedis(t)
	defer rdb.Close()
	ctx := context.Background()

	jobs := &markPaidRecorder{err: errors.New("store unavailable")}
	reconciler := NewReconciler(jobs, nil, nil, rdb)

	ev := checkoutEvent(t, "evt_dedup_fail", payment.SessionObject{
		ID:       "cs_dedup_fail",
		Mode:     string(payment.ModePayment),
		Metadata: map[string]string{"jobId": "job-1"},
	})

	// The failed delivery releases the claim, so the provider's retry is
	// processed instead of being swallowed as a duplicate.
	require.Error(t, reconciler.HandleEvent(ctx, ev))
	assert.Equal(t, 1, jobs.calls)

	jobs.err = nil
	require.NoError(t, reconciler.HandleEvent(ctx, ev))
	assert.Equal(t, 2, jobs.calls)

	// Once processed, further redeliveries are skipped.
	require.NoError(t, reconciler.HandleEvent(ctx, ev))
	assert.Equal(t, 2, jobs.calls)
}

func TestReconciler_IgnoresUnhandledEventTypes(t *testing.T) {
	reconciler, _, _, _, _ := newReconcilerFixture(t, "testdb_reconciler_ignored")
	ctx := context.Background()

	assert.NoError(t, reconciler.HandleEvent(ctx, &payment.Event{ID: "evt_misc", Type: "charge.refunded"}))
	assert.NoError(t, reconciler.HandleEvent(ctx, &payment.Event{ID: "evt_inv", Type: payment.EventInvoiceFailed}))
}
