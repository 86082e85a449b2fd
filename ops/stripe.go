package ops

import (
	"context"
	"errors"
	"log/slog"

	"github.com/servicly/functions/callable"
	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/store"
)

// StripeOnboardingLinker returns a fresh onboarding link for the caller's connected
// account, creating the account the first time.
type StripeOnboardingLinker struct {
	store    AccountStore
	accounts ConnectedAccounts
}

func NewStripeOnboardingLinker(store AccountStore, accounts ConnectedAccounts) *StripeOnboardingLinker {
	return &StripeOnboardingLinker{store: store, accounts: accounts}
}

func (l *StripeOnboardingLinker) Call(ctx context.Context, req *callable.Request) (any, error) {
	caller, err := req.RequireAuth()
	if err != nil {
		return nil, err
	}
	logger := log.LoggerFromContext(ctx)

	user, err := l.store.User(ctx, caller.UID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, callable.WrapError(callable.NotFound, "User profile not found.", err)
	}
	if err != nil {
		return nil, callable.WrapError(callable.Unknown, "Could not load the user profile.", err)
	}

	accountID := user.StripeAccountID
	if accountID == "" {
		created, err := l.accounts.CreateExpressAccount(ctx, user.Email)
		if err != nil {
			return nil, callable.WrapError(callable.Unknown, "Could not create the payment account.", err)
		}
		accountID, err = l.store.SetStripeAccountID(ctx, caller.UID, created)
		if err != nil {
			return nil, callable.WrapError(callable.Unknown, "Could not save the payment account.", err)
		}
		if accountID != created {
			logger.WarnContext(ctx, "payment account created concurrently, keeping the stored one",
				slog.String("storedAccountID", accountID),
				slog.String("discardedAccountID", created),
			)
		}
	}

	url, err := l.accounts.CreateOnboardingLink(ctx, accountID)
	if err != nil {
		return nil, callable.WrapError(callable.Unknown, "Could not create the onboarding link.", err)
	}
	return contract.StripeAccountLinkResponse{URL: url}, nil
}
