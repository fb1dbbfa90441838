package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

const testSecret = "whsec_test"

func TestStripeWebhook_AcknowledgesVerifiedEvent(t *testing.T) {
	payload := eventPayload(t, "evt_1", stripe.EventTypeInvoicePaid)
	service := &fakeStripeWebhookService{outcome: "processed"}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSecret}, nil, nil)

	rec := post(handler, payload, signatureHeader(payload, testSecret, time.Now().Unix()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	require.Len(t, service.events, 1)
	assert.Equal(t, "evt_1", service.events[0].ID)
	assert.Equal(t, stripe.EventTypeInvoicePaid, service.events[0].Type)
}

func TestStripeWebhook_DispatchFailureStillAcknowledged(t *testing.T) {
	payload := eventPayload(t, "evt_2", stripe.EventTypeChargeRefunded)
	service := &fakeStripeWebhookService{outcome: "failed", err: errors.New("db down")}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSecret}, nil, nil)

	rec := post(handler, payload, signatureHeader(payload, testSecret, time.Now().Unix()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, service.events, 1)
}

func TestStripeWebhook_UnknownTypeAcknowledged(t *testing.T) {
	payload := eventPayload(t, "evt_3", stripe.EventType("product.created"))
	service := &fakeStripeWebhookService{outcome: "ignored"}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSecret}, nil, nil)

	rec := post(handler, payload, signatureHeader(payload, testSecret, time.Now().Unix()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStripeWebhook_InvalidSignature(t *testing.T) {
	payload := eventPayload(t, "evt_4", stripe.EventTypeInvoicePaid)
	service := &fakeStripeWebhookService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSecret}, nil, nil)

	rec := post(handler, payload, "t=1,v1=invalid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SIGNATURE_INVALID")

	rec = post(handler, payload, signatureHeader(payload, "whsec_other", time.Now().Unix()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, service.events, "service must not run on a bad signature")
}

func TestStripeWebhook_MissingSignature(t *testing.T) {
	payload := eventPayload(t, "evt_5", stripe.EventTypeInvoicePaid)
	service := &fakeStripeWebhookService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSecret}, nil, nil)

	rec := post(handler, payload, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.events)
}

func TestStripeWebhook_NotConfigured(t *testing.T) {
	payload := eventPayload(t, "evt_6", stripe.EventTypeInvoicePaid)
	service := &fakeStripeWebhookService{}

	rec := post(StripeWebhook(service, nil, nil, nil), payload, "t=1,v1=x")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_CONFIGURED")

	rec = post(StripeWebhook(service, &fakeSigningClient{}, nil, nil), payload, "t=1,v1=x")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, service.events)
}

func post(handler http.Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func eventPayload(t *testing.T, id string, eventType stripe.EventType) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data": map[string]any{
			"object": map[string]any{"id": "in_1", "object": "invoice"},
		},
	})
	require.NoError(t, err)
	return payload
}

func signatureHeader(payload []byte, secret string, ts int64) string {
	signedPayload := fmt.Sprintf("%d.%s", ts, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

type fakeStripeWebhookService struct {
	outcome string
	err     error
	events  []*stripe.Event
}

func (f *fakeStripeWebhookService) HandleEvent(_ context.Context, event *stripe.Event) (string, error) {
	f.events = append(f.events, event)
	return f.outcome, f.err
}

type fakeSigningClient struct {
	secret string
}

func (c *fakeSigningClient) SigningSecret() string {
	return c.secret
}
