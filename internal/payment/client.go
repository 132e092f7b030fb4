// Package payment wraps the external payment collaborator behind a small
// interface so handlers and services never touch the provider SDK directly
// and tests can substitute a mock.
package payment

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the provider secret key or webhook
// secret is absent. Callers surface this as an explicit "not configured"
// response rather than silently skipping payment processing.
var ErrNotConfigured = errors.New("payment provider is not configured")

// Mode selects between a one-time payment and a recurring subscription.
type Mode string

const (
	ModePayment      Mode = "payment"
	ModeSubscription Mode = "subscription"
)

// Event types the reconciler dispatches on.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoiceFailed       = "invoice.payment_failed"
)

// CheckoutParams describes a checkout session to create.
type CheckoutParams struct {
	Mode               Mode
	ProductName        string
	ProductDescription string
	AmountCents        int64
	Currency           string
	CustomerEmail      string
	SuccessURL         string
	CancelURL          string
	// Metadata is echoed back verbatim in later webhook events; it carries
	// the local record ids the reconciler keys on.
	Metadata map[string]string
}

// CheckoutSession is the provider's representation of a checkout in
// progress, reduced to the fields this system stores or inspects.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	PaymentStatus   string            // "paid" once the checkout completed
	Metadata        map[string]string // the metadata the session was created with
}

// Event is a verified webhook notification. Object holds the raw JSON of the
// event's data object; the reconciler decodes it into the minimal shape it
// needs for the event type.
type Event struct {
	ID     string
	Type   string
	Object []byte
}

// SessionObject is the decoded data object of a checkout.session.* event.
type SessionObject struct {
	ID            string            `json:"id"`
	Mode          string            `json:"mode"`
	PaymentIntent string            `json:"payment_intent"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// SubscriptionObject is the decoded data object of a customer.subscription.*
// event.
type SubscriptionObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// Client is the payment collaborator interface. It is constructed explicitly
// at startup and injected into the handlers and services that need it.
type Client interface {
	// CreateCheckoutSession creates a checkout session and returns its id
	// and redirect URL.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// RetrieveSession fetches a session by id for synchronous verification.
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// ConstructEvent verifies the webhook signature and parses the payload.
	// A bad signature or missing webhook secret yields an error and no event.
	ConstructEvent(payload []byte, signatureHeader string) (*Event, error)
}
