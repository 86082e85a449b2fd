package auth

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
)

// ErrNoCredentials is returned when the request carries no Authorization header at all.
var ErrNoCredentials = errMissingAuthorizationHeader

// Verifier checks Firebase ID tokens. *auth.Client satisfies it.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Authenticate verifies the bearer ID token of the request.
func Authenticate(req *http.Request, verifier Verifier) (*auth.Token, error) {
	jwtToken, err := bearerTokenFromRequest(req)
	if err != nil {
		return nil, err
	}
	return verifier.VerifyIDToken(req.Context(), jwtToken)
}
