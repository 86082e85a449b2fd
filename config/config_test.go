package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "servicly-test")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_1")
	t.Setenv("STRIPE_REFRESH_URL", "")
	t.Setenv("MERCADOPAGO_BASE_URL", "")
	t.Setenv("PAYMENT_CURRENCY", "")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "servicly-test", cfg.ProjectID)
	assert.Equal(t, "sk_test_1", cfg.StripeSecretKey)
	assert.Equal(t, "https://servicly.app/reauth", cfg.StripeRefreshURL)
	assert.Equal(t, "https://api.mercadopago.com", cfg.MercadoPagoBaseURL)
	assert.Equal(t, "ARS", cfg.PaymentCurrency)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "servicly-test")
	t.Setenv("PAYMENT_SUCCESS_URL", "http://localhost:3000/ok")
	t.Setenv("PAYMENT_CURRENCY", "BRL")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/ok", cfg.PaymentSuccessURL)
	assert.Equal(t, "BRL", cfg.PaymentCurrency)
}
