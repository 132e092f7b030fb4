package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/payment"
)

// paymentEventTTL is how long a processed event id is remembered. Providers
// stop retrying well within this window.
const paymentEventTTL = 72 * time.Hour

// Reconciler applies verified payment provider events to the local records:
// completed checkouts publish jobs and approve submissions, subscription
// changes move listings between tiers.
type Reconciler struct {
	jobs        IJobService
	submissions ISubmissionService
	servers     IServerService
	rdb         *redis.Client // nil disables event dedup
}

// NewReconciler creates a new Reconciler. rdb may be nil; duplicate events
// are then caught only by the idempotent record updates.
func NewReconciler(jobs IJobService, submissions ISubmissionService, servers IServerService, rdb *redis.Client) *Reconciler {
	return &Reconciler{jobs: jobs, submissions: submissions, servers: servers, rdb: rdb}
}

// HandleEvent processes one verified webhook event. A nil return acknowledges
// the event; an error tells the provider to retry delivery later.
func (r *Reconciler) HandleEvent(ctx context.Context, ev *payment.Event) error {
	claimed, err := r.claimEvent(ctx, ev.ID)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("Payment event %s already processed, skipping", ev.ID)
		return nil
	}

	err = r.dispatch(ctx, ev)
	if err != nil {
		// Release the claim so the provider's retry is processed.
		r.releaseEvent(ctx, ev.ID)
		return err
	}
	return nil
}

func (r *Reconciler) dispatch(ctx context.Context, ev *payment.Event) error {
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		return r.handleCheckoutCompleted(ctx, ev)
	case payment.EventSubscriptionUpdated:
		return r.handleSubscriptionUpdated(ctx, ev)
	case payment.EventSubscriptionDeleted:
		return r.handleSubscriptionDeleted(ctx, ev)
	case payment.EventInvoiceFailed:
		// Grace handling is left to the provider's dunning; just record it.
		log.Printf("Invoice payment failed (event %s)", ev.ID)
		return nil
	default:
		log.Printf("Ignoring payment event %s of type %s", ev.ID, ev.Type)
		return nil
	}
}

func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, ev *payment.Event) error {
	var session payment.SessionObject
	if err := json.Unmarshal(ev.Object, &session); err != nil {
		return fmt.Errorf("failed to decode checkout session from event %s: %w", ev.ID, err)
	}

	switch session.Mode {
	case string(payment.ModePayment):
		jobID := session.Metadata["jobId"]
		if jobID == "" {
			log.Printf("Checkout %s completed without a job reference, ignoring", session.ID)
			return nil
		}
		err := r.jobs.MarkPaid(ctx, jobID, session.ID, session.PaymentIntent)
		if errors.Is(err, ErrNotFound) {
			log.Printf("Checkout %s references unknown job %s, ignoring", session.ID, jobID)
			return nil
		}
		return err

	case string(payment.ModeSubscription):
		submissionID := session.Metadata["submissionId"]
		if submissionID == "" {
			log.Printf("Checkout %s completed without a submission reference, ignoring", session.ID)
			return nil
		}
		tier := models.Tier(session.Metadata["tier"])
		_, err := r.submissions.ApprovePaid(ctx, submissionID, tier, session.ID, session.PaymentIntent)
		if errors.Is(err, ErrNotFound) {
			log.Printf("Checkout %s references unknown submission %s, ignoring", session.ID, submissionID)
			return nil
		}
		return err

	default:
		log.Printf("Checkout %s completed in unknown mode %q, ignoring", session.ID, session.Mode)
		return nil
	}
}

func (r *Reconciler) handleSubscriptionUpdated(ctx context.Context, ev *payment.Event) error {
	var sub payment.SubscriptionObject
	if err := json.Unmarshal(ev.Object, &sub); err != nil {
		return fmt.Errorf("failed to decode subscription from event %s: %w", ev.ID, err)
	}

	serverID := sub.Metadata["acpServerId"]
	if serverID == "" {
		log.Printf("Subscription %s updated without a listing reference, ignoring", sub.ID)
		return nil
	}

	var tier models.Tier
	switch sub.Status {
	case "active", "trialing":
		tier = models.Tier(sub.Metadata["tier"])
		if !tier.Valid() {
			log.Printf("Subscription %s carries unknown tier %q, ignoring", sub.ID, sub.Metadata["tier"])
			return nil
		}
	default:
		// canceled, unpaid, incomplete_expired: the perks end.
		tier = models.TierFree
	}

	err := r.servers.ApplyTier(ctx, serverID, tier)
	if errors.Is(err, ErrNotFound) {
		log.Printf("Subscription %s references unknown listing %s, ignoring", sub.ID, serverID)
		return nil
	}
	return err
}

func (r *Reconciler) handleSubscriptionDeleted(ctx context.Context, ev *payment.Event) error {
	var sub payment.SubscriptionObject
	if err := json.Unmarshal(ev.Object, &sub); err != nil {
		return fmt.Errorf("failed to decode subscription from event %s: %w", ev.ID, err)
	}

	serverID := sub.Metadata["acpServerId"]
	if serverID == "" {
		log.Printf("Subscription %s deleted without a listing reference, ignoring", sub.ID)
		return nil
	}

	err := r.servers.ApplyTier(ctx, serverID, models.TierFree)
	if errors.Is(err, ErrNotFound) {
		log.Printf("Subscription %s references unknown listing %s, ignoring", sub.ID, serverID)
		return nil
	}
	return err
}

// claimEvent marks the event id as seen. Returns false when another delivery
// of the same event already claimed it.
func (r *Reconciler) claimEvent(ctx context.Context, eventID string) (bool, error) {
	if r.rdb == nil || eventID == "" {
		return true, nil
	}
	ok, err := r.rdb.SetNX(ctx, paymentEventKey(eventID), time.Now().UTC().Format(time.RFC3339), paymentEventTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim payment event %s: %w", eventID, err)
	}
	return ok, nil
}

func (r *Reconciler) releaseEvent(ctx context.Context, eventID string) {
	if r.rdb == nil || eventID == "" {
		return
	}
	if err := r.rdb.Del(ctx, paymentEventKey(eventID)).Err(); err != nil {
		log.Printf("Failed to release claim on payment event %s: %v", eventID, err)
	}
}

func paymentEventKey(eventID string) string {
	return "payment:event:" + eventID
}
