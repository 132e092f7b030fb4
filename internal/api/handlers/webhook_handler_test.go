package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fanfcorp/acp-market/internal/api/handlers"
	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/services"
)

func webhookFixture() (*gin.Engine, *MockPayClient, *MockJobService) {
	gin.SetMode(gin.TestMode)
	mockPay := new(MockPayClient)
	mockJobSvc := new(MockJobService)
	mockSubmissionSvc := new(MockSubmissionService)
	mockServerSvc := new(MockServerService)
	reconciler := services.NewReconciler(mockJobSvc, mockSubmissionSvc, mockServerSvc, nil)
	handler := handlers.NewWebhookHandler(mockPay, reconciler)

	r := gin.New()
	r.POST("/v1/webhooks/payment", handler.HandlePaymentWebhook)
	return r, mockPay, mockJobSvc
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	r, mockPay, _ := webhookFixture()

	mockPay.On("ConstructEvent", mock.Anything, "bad-sig").Return(nil, errors.New("signature mismatch"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/webhooks/payment", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "bad-sig")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockPay.AssertExpectations(t)
}

func TestWebhookHandler_CheckoutCompleted(t *testing.T) {
	r, mockPay, mockJobSvc := webhookFixture()

	object, _ := json.Marshal(payment.SessionObject{
		ID:            "cs_1",
		Mode:          string(payment.ModePayment),
		PaymentIntent: "pi_1",
		Metadata:      map[string]string{"jobId": "job-1"},
	})
	event := &payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, Object: object}
	mockPay.On("ConstructEvent", mock.Anything, "good-sig").Return(event, nil)
	mockJobSvc.On("MarkPaid", mock.Anything, "job-1", "cs_1", "pi_1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/webhooks/payment", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "good-sig")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, true, respBody["received"])
	mockPay.AssertExpectations(t)
	mockJobSvc.AssertExpectations(t)
}

func TestWebhookHandler_ProcessingFailureTriggersRetry(t *testing.T) {
	r, mockPay, mockJobSvc := webhookFixture()

	object, _ := json.Marshal(payment.SessionObject{
		ID:       "cs_2",
		Mode:     string(payment.ModePayment),
		Metadata: map[string]string{"jobId": "job-2"},
	})
	event := &payment.Event{ID: "evt_2", Type: payment.EventCheckoutCompleted, Object: object}
	mockPay.On("ConstructEvent", mock.Anything, "good-sig").Return(event, nil)
	mockJobSvc.On("MarkPaid", mock.Anything, "job-2", "cs_2", "").Return(errors.New("db down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/webhooks/payment", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "good-sig")
	r.ServeHTTP(w, req)

	// Non-2xx makes the provider redeliver.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockJobSvc.AssertExpectations(t)
}

func TestWebhookHandler_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reconciler := services.NewReconciler(new(MockJobService), new(MockSubmissionService), new(MockServerService), nil)
	handler := handlers.NewWebhookHandler(nil, reconciler)

	r := gin.New()
	r.POST("/v1/webhooks/payment", handler.HandlePaymentWebhook)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/webhooks/payment", bytes.NewReader([]byte(`{}`)))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
