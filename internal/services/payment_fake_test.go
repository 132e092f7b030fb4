package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanfcorp/acp-market/internal/payment"
)

// fakePayClient is an in-memory payment.Client for service tests.
type fakePayClient struct {
	created  []payment.CheckoutParams
	sessions map[string]*payment.CheckoutSession
}

func newFakePayClient() *fakePayClient {
	return &fakePayClient{sessions: make(map[string]*payment.CheckoutSession)}
}

func (f *fakePayClient) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	f.created = append(f.created, params)
	session := &payment.CheckoutSession{
		ID:       fmt.Sprintf("cs_test_%d", len(f.created)),
		URL:      fmt.Sprintf("https://checkout.example.com/cs_test_%d", len(f.created)),
		Metadata: params.Metadata,
	}
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakePayClient) RetrieveSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	return session, nil
}

func (f *fakePayClient) ConstructEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	return nil, errors.New("not implemented in fake")
}

// markPaid flips a stored session into the paid state, as if the customer
// completed the checkout.
func (f *fakePayClient) markPaid(sessionID, paymentIntentID string) {
	if session, ok := f.sessions[sessionID]; ok {
		session.PaymentStatus = "paid"
		session.PaymentIntentID = paymentIntentID
	}
}
