package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/event"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/push"
)

// NewRequestFanout notifies every provider of the category working in the municipio
// of a new service request.
type NewRequestFanout struct {
	notifier
}

func NewNewRequestFanout(store Store, sender push.Sender) *NewRequestFanout {
	return &NewRequestFanout{notifier{store: store, push: sender}}
}

func (r *NewRequestFanout) Handle(ctx context.Context, change *event.Change) Outcome {
	if !change.Created() {
		return skipped("not a creation")
	}
	var req contract.FirestoreRequest
	if err := change.After.DataTo(&req); err != nil {
		return failed("error while decoding request", err)
	}
	if req.Category == "" || req.Country == "" || req.Municipality == "" || req.Title == "" || req.UserID == "" {
		return skipped("request is incomplete")
	}

	requestID := change.Params["solicitudId"]
	logger := log.LoggerFromContext(ctx).With(slog.String(log.RequestDocField, requestID))
	ctx = log.WithLogger(ctx, logger)

	providers, err := r.store.ProvidersFor(ctx, req.Country, req.Category)
	if err != nil {
		return failed("error while querying providers", err)
	}
	if len(providers) == 0 {
		return skipped("no providers for category " + req.Category)
	}

	targets := providersInZone(providers, req.Municipality, req.UserID)
	if len(targets) == 0 {
		return skipped("no provider other than the requester works in " + req.Municipality)
	}

	msg := push.Notification{
		Title: fmt.Sprintf("New %s request", req.Category),
		Body:  fmt.Sprintf(`There is a new "%s" job in your area that might interest you.`, req.Title),
		Data:  map[string]string{"referenceId": requestID, "type": "new_request"},
	}

	var (
		sent int
		errs []error
	)
	for _, p := range targets {
		if len(p.FCMTokens) == 0 {
			continue
		}
		msg.Tokens = p.FCMTokens
		o := r.send(ctx, p.ID, msg)
		if o.Status == Failed {
			logger.ErrorContext(ctx, "error while notifying provider",
				slog.String(log.RecipientIDField, p.ID), log.Err(o.Err))
			errs = append(errs, fmt.Errorf("provider %s: %w", p.ID, o.Err))
			continue
		}
		sent += o.Sent
	}

	switch {
	case sent == 0 && len(errs) > 0:
		return failed("every provider notification failed", errors.Join(errs...))
	case sent == 0:
		return skipped("matching providers have no push tokens")
	}
	return delivered(sent)
}

// providersInZone keeps the providers that listen to the municipio, minus the requester.
func providersInZone(providers []*contract.FirestoreUser, municipality, requesterID string) []*contract.FirestoreUser {
	var out []*contract.FirestoreUser
	for _, p := range providers {
		if p.ID == requesterID {
			continue
		}
		if slices.Contains(p.NotificationZones, municipality) {
			out = append(out, p)
		}
	}
	return out
}
