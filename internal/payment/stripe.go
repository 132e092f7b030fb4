package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// stripeClient implements Client on the Stripe API.
type stripeClient struct {
	api           *stripeclient.API
	webhookSecret string
}

// NewStripeClient constructs a Stripe-backed payment client. secretKey may be
// empty, in which case every call returns ErrNotConfigured.
func NewStripeClient(secretKey, webhookSecret string) Client {
	c := &stripeClient{webhookSecret: webhookSecret}
	if secretKey != "" {
		c.api = stripeclient.New(secretKey, nil)
	}
	return c
}

func (c *stripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}

	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(params.ProductName),
			Description: stripe.String(params.ProductDescription),
		},
		UnitAmount: stripe.Int64(params.AmountCents),
	}
	if params.Mode == ModeSubscription {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}

	sessionParams := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(params.Mode)),
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		CustomerEmail: stripe.String(params.CustomerEmail),
	}
	sessionParams.Context = ctx
	for k, v := range params.Metadata {
		sessionParams.AddMetadata(k, v)
	}

	s, err := c.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

func (c *stripeClient) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}
	return fromStripeSession(s), nil
}

func (c *stripeClient) ConstructEvent(payload []byte, signatureHeader string) (*Event, error) {
	if c.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	ev, err := webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return &Event{
		ID:     ev.ID,
		Type:   string(ev.Type),
		Object: ev.Data.Raw,
	}, nil
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}
