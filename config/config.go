package config

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/compute/metadata"
)

const (
	defaultStripeRefreshURL = "https://servicly.app/reauth"
	defaultStripeReturnURL  = "https://servicly.app/success"
	defaultMercadoPagoURL   = "https://api.mercadopago.com"
	defaultSuccessURL       = "https://servicly.app/pago-exitoso"
	defaultFailureURL       = "https://servicly.app/pago-fallido"
	defaultPendingURL       = "https://servicly.app/pago-pendiente"
	defaultCurrency         = "ARS"
)

type Config struct {
	ProjectID       string
	CredentialsPath string

	StripeSecretKey  string
	StripeRefreshURL string
	StripeReturnURL  string

	MercadoPagoAccessToken string
	MercadoPagoBaseURL     string
	PaymentSuccessURL      string
	PaymentFailureURL      string
	PaymentPendingURL      string
	PaymentCurrency        string
}

// Load reads the configuration from the environment. The project id falls back
// to the metadata server when running on GCP.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		ProjectID:              os.Getenv("GOOGLE_CLOUD_PROJECT"),
		CredentialsPath:        os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		StripeSecretKey:        os.Getenv("STRIPE_SECRET_KEY"),
		StripeRefreshURL:       getenv("STRIPE_REFRESH_URL", defaultStripeRefreshURL),
		StripeReturnURL:        getenv("STRIPE_RETURN_URL", defaultStripeReturnURL),
		MercadoPagoAccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		MercadoPagoBaseURL:     getenv("MERCADOPAGO_BASE_URL", defaultMercadoPagoURL),
		PaymentSuccessURL:      getenv("PAYMENT_SUCCESS_URL", defaultSuccessURL),
		PaymentFailureURL:      getenv("PAYMENT_FAILURE_URL", defaultFailureURL),
		PaymentPendingURL:      getenv("PAYMENT_PENDING_URL", defaultPendingURL),
		PaymentCurrency:        getenv("PAYMENT_CURRENCY", defaultCurrency),
	}

	if cfg.ProjectID == "" && metadata.OnGCE() {
		projectID, err := metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving project id: %w", err)
		}
		cfg.ProjectID = projectID
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
