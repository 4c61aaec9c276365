package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Skotchmaster/storefront/internal/domain"
)

const whSecret = "whsec_test_secret"

func sign(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func completedEvent(orderID, status string) []byte {
	ev := map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   EventCheckoutCompleted,
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_test_1",
				"object":         "checkout.session",
				"payment_status": status,
				"payment_intent": "pi_123",
				"metadata":       map[string]string{"order_id": orderID},
			},
		},
	}
	b, _ := json.Marshal(ev)
	return b
}

func TestParseEvent_CheckoutCompleted(t *testing.T) {
	g := NewStripeGateway(Config{SecretKey: "sk_test", WebhookSecret: whSecret})
	payload := completedEvent("4b8f8f1e-9c55-4f8e-9a8e-0d5a3c1d2e3f", "paid")

	ev, err := g.ParseEvent(payload, sign(t, payload, whSecret))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "4b8f8f1e-9c55-4f8e-9a8e-0d5a3c1d2e3f", ev.OrderID)
	assert.Equal(t, PaymentStatusPaid, ev.PaymentStatus)
	assert.Equal(t, "pi_123", ev.PaymentIntentID)
}

func TestParseEvent_BadSignature(t *testing.T) {
	g := NewStripeGateway(Config{SecretKey: "sk_test", WebhookSecret: whSecret})
	payload := completedEvent("x", "paid")

	_, err := g.ParseEvent(payload, sign(t, payload, "whsec_other"))
	assert.True(t, errors.Is(err, domain.ErrInvalidSignature))

	_, err = g.ParseEvent(payload, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidSignature))
}

func TestParseEvent_Malformed(t *testing.T) {
	g := NewStripeGateway(Config{SecretKey: "sk_test", WebhookSecret: whSecret})
	payload := []byte(`{"id": "evt_1", "type": `)

	_, err := g.ParseEvent(payload, sign(t, payload, whSecret))
	assert.True(t, errors.Is(err, domain.ErrMalformedPayload))
}

func TestParseEvent_OtherTypePassesThrough(t *testing.T) {
	g := NewStripeGateway(Config{SecretKey: "sk_test", WebhookSecret: whSecret})
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`)

	ev, err := g.ParseEvent(payload, sign(t, payload, whSecret))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.OrderID)
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.example/cs_test_1","payment_intent":"pi_777"}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(Config{SecretKey: "sk_test", BaseURL: srv.URL})
	s, err := g.CreateCheckoutSession(context.Background(), SessionRequest{
		OrderID:    "order-1",
		Currency:   "brl",
		Lines:      []LineItem{{Name: "Mug", UnitAmount: 1999, Quantity: 2}},
		SuccessURL: "http://shop/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "http://shop/payment-cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_1", s.URL)
	assert.Equal(t, "pi_777", s.PaymentIntentID)

	assert.Equal(t, "order-1", form.Get("metadata[order_id]"))
	assert.Equal(t, "1999", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "brl", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "payment", form.Get("mode"))
}

func TestCreateCheckoutSession_ProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid currency"}}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(Config{SecretKey: "sk_test", BaseURL: srv.URL})
	_, err := g.CreateCheckoutSession(context.Background(), SessionRequest{OrderID: "o", Currency: "zzz"})
	require.Error(t, err)

	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Equal(t, "Invalid currency", pe.Message)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCreateCheckoutSession_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	g := NewStripeGateway(Config{SecretKey: "sk_test", BaseURL: base, Timeout: time.Second})
	_, err := g.CreateCheckoutSession(context.Background(), SessionRequest{OrderID: "o", Currency: "brl"})
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}
