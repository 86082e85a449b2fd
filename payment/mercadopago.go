package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/servicly/functions/log"
)

const autoReturnApproved = "approved"

// Checkout describes a single item purchase.
type Checkout struct {
	Title      string
	UnitPrice  float64
	PayerEmail string
}

// Preference is a hosted checkout session issued by the provider.
type Preference struct {
	ID        string
	InitPoint string
}

// BackURLs are the pages the payer returns to for each outcome.
type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// MercadoPago creates checkout preferences through the MercadoPago SDK.
type MercadoPago struct {
	preferences preference.Client
	currency    string
	backURLs    BackURLs
}

// NewMercadoPago builds the preference client. A non-empty baseURL redirects the
// SDK's calls to another host, such as a sandbox or a test server.
func NewMercadoPago(baseURL, accessToken, currency string, backURLs BackURLs) (*MercadoPago, error) {
	var rt http.RoundTripper = http.DefaultTransport
	if baseURL != "" {
		target, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("mercadopago: invalid base url: %w", err)
		}
		rt = &hostRoundTripper{target: target, rt: rt}
	}
	cfg, err := config.New(accessToken, config.WithHTTPClient(&http.Client{
		Timeout:   15 * time.Second,
		Transport: &loggingRoundTripper{rt: rt},
	}))
	if err != nil {
		return nil, fmt.Errorf("mercadopago: %w", err)
	}
	return &MercadoPago{
		preferences: preference.NewClient(cfg),
		currency:    currency,
		backURLs:    backURLs,
	}, nil
}

// CreatePreference registers a one-item preference with auto return on approval.
func (m *MercadoPago) CreatePreference(ctx context.Context, checkout Checkout) (*Preference, error) {
	resp, err := m.preferences.Create(ctx, preference.Request{
		Items: []preference.ItemRequest{{
			Title:      checkout.Title,
			Quantity:   1,
			CurrencyID: m.currency,
			UnitPrice:  checkout.UnitPrice,
		}},
		Payer: &preference.PayerRequest{Email: checkout.PayerEmail},
		BackURLs: &preference.BackURLsRequest{
			Success: m.backURLs.Success,
			Failure: m.backURLs.Failure,
			Pending: m.backURLs.Pending,
		},
		AutoReturn: autoReturnApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("mercadopago: creating preference: %w", err)
	}
	if resp.ID == "" || resp.InitPoint == "" {
		return nil, fmt.Errorf("mercadopago: incomplete preference in response")
	}
	return &Preference{ID: resp.ID, InitPoint: resp.InitPoint}, nil
}

// hostRoundTripper sends every request to target, keeping path and query.
type hostRoundTripper struct {
	target *url.URL
	rt     http.RoundTripper
}

func (h *hostRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = h.target.Scheme
	req.URL.Host = h.target.Host
	req.Host = h.target.Host
	return h.rt.RoundTrip(req)
}

// loggingRoundTripper logs the outgoing request line
type loggingRoundTripper struct {
	rt http.RoundTripper
}

func (lrt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := log.LoggerFromContext(req.Context())
	start := time.Now()
	resp, err := lrt.rt.RoundTrip(req)
	if err != nil {
		logger.ErrorContext(req.Context(), "payment provider request failed",
			slog.String("url", req.URL.String()),
			log.Err(err),
		)
		return nil, err
	}
	logger.InfoContext(req.Context(), "payment provider request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}
