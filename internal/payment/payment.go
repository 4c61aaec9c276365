// Package payment talks to the hosted-checkout payment provider (Stripe).
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Skotchmaster/storefront/internal/domain"
)

const EventCheckoutCompleted = "checkout.session.completed"

const PaymentStatusPaid = "paid"

type LineItem struct {
	Name       string
	UnitAmount int64 // minor units
	Quantity   int64
}

type SessionRequest struct {
	OrderID    string
	Currency   string
	Lines      []LineItem
	SuccessURL string
	CancelURL  string
}

type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// Event is the subset of a provider event the shop acts on.
type Event struct {
	ID              string
	Type            string
	OrderID         string
	PaymentStatus   string
	PaymentIntentID string
}

type Config struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration

	// BaseURL overrides the API endpoint, used against fakes.
	BaseURL    string
	MaxRetries int64
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(cfg Config) *StripeGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	bc := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.BaseURL != "" {
		bc.URL = stripe.String(cfg.BaseURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, bc),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, bc),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, bc),
	})
	return &StripeGateway{api: api, webhookSecret: cfg.WebhookSecret}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	for _, l := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
				UnitAmount: stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}
	params.AddMetadata("order_id", req.OrderID)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	if s.URL == "" {
		return nil, domain.PaymentError(http.StatusServiceUnavailable, "provider returned no checkout url", nil)
	}

	out := &Session{ID: s.ID, URL: s.URL}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out, nil
}

// mapStripeError turns provider rejections into 400 and everything else
// (network, timeouts, provider outages) into 503.
func mapStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		msg := se.Msg
		if msg == "" {
			msg = string(se.Code)
		}
		if se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 {
			return domain.PaymentError(http.StatusBadRequest, msg, err)
		}
		return domain.PaymentError(http.StatusServiceUnavailable, "payment provider unavailable", err)
	}
	return domain.PaymentError(http.StatusServiceUnavailable, "payment provider unreachable", err)
}

// ParseEvent verifies the signature header before decoding anything.
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned),
			errors.Is(err, webhook.ErrInvalidHeader),
			errors.Is(err, webhook.ErrNoValidSignature),
			errors.Is(err, webhook.ErrTooOld):
			return nil, domain.ErrInvalidSignature
		default:
			return nil, domain.ErrMalformedPayload
		}
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, domain.ErrMalformedPayload
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, domain.ErrMalformedPayload
	}
	out.OrderID = s.Metadata["order_id"]
	out.PaymentStatus = string(s.PaymentStatus)
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out, nil
}
