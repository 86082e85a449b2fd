package ops

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/servicly/functions/callable"
	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/log"
)

const adminClaim = "admin"

// AdminRoleAssigner grants the admin claim to the account with a given email.
// Only existing admins may call it.
type AdminRoleAssigner struct {
	users UserAdmin
}

func NewAdminRoleAssigner(users UserAdmin) *AdminRoleAssigner {
	return &AdminRoleAssigner{users: users}
}

func (a *AdminRoleAssigner) Call(ctx context.Context, req *callable.Request) (any, error) {
	if !req.Auth.HasClaim(adminClaim) {
		return nil, callable.NewError(callable.PermissionDenied, "Only administrators can assign roles.")
	}

	var in contract.SetAdminRoleRequest
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, callable.NewError(callable.InvalidArgument, "An email is required.")
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, callable.WrapError(callable.NotFound, "No user found with that email.", err)
	}
	if err := a.users.SetCustomUserClaims(ctx, user.UID, map[string]interface{}{adminClaim: true}); err != nil {
		return nil, callable.WrapError(callable.NotFound, "No user found with that email.", err)
	}

	log.LoggerFromContext(ctx).InfoContext(ctx, "admin claim granted", slog.String("targetUserID", user.UID))
	return contract.SetAdminRoleResponse{Message: fmt.Sprintf("Success! %s is now an admin.", email)}, nil
}
