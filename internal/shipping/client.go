// Package shipping quotes parcel rates from the Melhor Envio API.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
)

const (
	DefaultBaseURL = "https://sandbox.melhorenvio.com.br"
	calculatePath  = "/api/v2/me/shipment/calculate"

	// Correios SEDEX and PAC.
	defaultServices = "1,2"
)

type Option struct {
	Name         string
	Price        decimal.Decimal
	DeliveryTime int
	Carrier      string
}

type QuoteRequest struct {
	FromPostalCode string
	ToPostalCode   string
	Package        Package
	Insurance      decimal.Decimal
}

type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: "storefront (ops@storefront.local)",
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type postal struct {
	PostalCode string `json:"postal_code"`
}

type wirePackage struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

type wireOptions struct {
	InsuranceValue float64 `json:"insurance_value"`
	Receipt        bool    `json:"receipt"`
	OwnHand        bool    `json:"own_hand"`
}

type calculateRequest struct {
	From     postal      `json:"from"`
	To       postal      `json:"to"`
	Package  wirePackage `json:"package"`
	Options  wireOptions `json:"options"`
	Services string      `json:"services"`
}

type wireOption struct {
	Name         string          `json:"name"`
	Price        json.RawMessage `json:"price"`
	DeliveryTime int             `json:"delivery_time"`
	Error        json.RawMessage `json:"error"`
	Company      struct {
		Name string `json:"name"`
	} `json:"company"`
}

func f64(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func (c *Client) Quote(ctx context.Context, req QuoteRequest) ([]Option, error) {
	body, err := json.Marshal(calculateRequest{
		From: postal{PostalCode: digits(req.FromPostalCode)},
		To:   postal{PostalCode: digits(req.ToPostalCode)},
		Package: wirePackage{
			Weight: f64(req.Package.WeightKG),
			Height: f64(req.Package.HeightCM),
			Width:  f64(req.Package.WidthCM),
			Length: f64(req.Package.LengthCM),
		},
		Options:  wireOptions{InsuranceValue: f64(req.Insurance)},
		Services: defaultServices,
	})
	if err != nil {
		return nil, fmt.Errorf("encode quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+calculatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.ShippingError(http.StatusServiceUnavailable, "shipping service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.ShippingError(http.StatusServiceUnavailable, "shipping service unreachable", err)
	}

	if msg, ok := carrierError(raw); ok {
		return nil, domain.ShippingError(http.StatusBadRequest, "shipping calculation failed: "+msg, nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ShippingError(http.StatusServiceUnavailable,
			fmt.Sprintf("shipping service returned status %d", resp.StatusCode), nil)
	}

	var wire []wireOption
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.ShippingError(http.StatusServiceUnavailable, "unexpected shipping response", err)
	}

	out := make([]Option, 0, len(wire))
	for _, w := range wire {
		if len(w.Error) > 0 && string(w.Error) != "null" {
			continue
		}
		price, err := parsePrice(w.Price)
		if err != nil {
			continue
		}
		out = append(out, Option{
			Name:         w.Name,
			Price:        price,
			DeliveryTime: w.DeliveryTime,
			Carrier:      w.Company.Name,
		})
	}
	return out, nil
}

// carrierError extracts the first message of an {"errors": {field: [msg]}} body.
func carrierError(raw []byte) (string, bool) {
	var env struct {
		Message string                     `json:"message"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Errors == nil {
		return "", false
	}

	keys := make([]string, 0, len(env.Errors))
	for k := range env.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var msgs []string
		if err := json.Unmarshal(env.Errors[k], &msgs); err == nil && len(msgs) > 0 {
			return msgs[0], true
		}
		var msg string
		if err := json.Unmarshal(env.Errors[k], &msg); err == nil && msg != "" {
			return msg, true
		}
	}
	if env.Message != "" {
		return env.Message, true
	}
	return "invalid request", true
}

// parsePrice accepts both "18.50" and 18.5.
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return decimal.NewFromString(s)
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func digits(cep string) string {
	return strings.ReplaceAll(strings.TrimSpace(cep), "-", "")
}
