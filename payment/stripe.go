// Package payment talks to the external payment providers: Stripe for connected
// provider accounts and MercadoPago for checkout preferences.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const accountLinkOnboarding = "account_onboarding"

// Stripe creates express connected accounts and their onboarding links.
type Stripe struct {
	api        *client.API
	refreshURL string
	returnURL  string
}

func NewStripe(secretKey, refreshURL, returnURL string) *Stripe {
	return newStripe(secretKey, refreshURL, returnURL, nil)
}

func newStripe(secretKey, refreshURL, returnURL string, backends *stripe.Backends) *Stripe {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Stripe{api: api, refreshURL: refreshURL, returnURL: returnURL}
}

func (s *Stripe) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx
	acct, err := s.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe account: %w", err)
	}
	return acct.ID, nil
}

// CreateOnboardingLink returns a fresh single-use onboarding URL for the account.
func (s *Stripe) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(s.refreshURL),
		ReturnURL:  stripe.String(s.returnURL),
		Type:       stripe.String(accountLinkOnboarding),
	}
	params.Context = ctx
	link, err := s.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe account link: %w", err)
	}
	return link.URL, nil
}
