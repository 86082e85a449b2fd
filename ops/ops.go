// Package ops implements the operations clients invoke directly. Each operation
// validates its caller and input before any side effect and reports failures as
// classified callable errors.
package ops

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/payment"
)

// UserAdmin manages identity accounts. *auth.Client satisfies it.
type UserAdmin interface {
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

type ChatStore interface {
	User(ctx context.Context, userID string) (*contract.FirestoreUser, error)
	CreateChatRoom(ctx context.Context, chatID string, participants []string) (bool, error)
	SetChatRoomDetails(ctx context.Context, chatID string, names, photos map[string]string, placeholder string) error
}

type AccountStore interface {
	User(ctx context.Context, userID string) (*contract.FirestoreUser, error)
	SetStripeAccountID(ctx context.Context, userID, accountID string) (string, error)
}

// ConnectedAccounts is the Stripe side of provider onboarding.
type ConnectedAccounts interface {
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)
}

type Checkout interface {
	CreatePreference(ctx context.Context, checkout payment.Checkout) (*payment.Preference, error)
}
