// Package trigger holds the handlers that react to Firestore document changes by
// maintaining derived fields or sending push notifications.
//
// Handlers never return errors to the platform. Each invocation ends in an Outcome
// that says whether something was delivered, deliberately skipped, or failed.
package trigger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/event"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/push"
	"github.com/servicly/functions/store"
)

// Fallback labels used when a related profile is missing or has no name.
const (
	unknownSender       = "Someone"
	unknownProfessional = "A professional"
)

// Store is the subset of document access the handlers need.
type Store interface {
	User(ctx context.Context, userID string) (*contract.FirestoreUser, error)
	ChatRoom(ctx context.Context, chatID string) (*contract.FirestoreChat, error)
	Post(ctx context.Context, postID string) (*contract.FirestorePost, error)
	ProvidersFor(ctx context.Context, country, category string) ([]*contract.FirestoreUser, error)
	SetSearchKeywords(ctx context.Context, userID string, keywords []string) error
}

// Handler reacts to one document change.
type Handler interface {
	Handle(ctx context.Context, change *event.Change) Outcome
}

type Status int

const (
	Delivered Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of one handler invocation.
type Outcome struct {
	Status Status
	// Sent counts successful outbound calls (pushes or document writes).
	Sent   int
	Reason string
	Err    error
}

func delivered(n int) Outcome { return Outcome{Status: Delivered, Sent: n} }

func skipped(reason string) Outcome { return Outcome{Status: Skipped, Reason: reason} }

func failed(reason string, err error) Outcome {
	return Outcome{Status: Failed, Reason: reason, Err: err}
}

// Log writes the outcome at a level matching its status.
func (o Outcome) Log(ctx context.Context, logger *slog.Logger) {
	switch o.Status {
	case Delivered:
		logger.InfoContext(ctx, "handler finished", slog.Int("sent", o.Sent))
	case Skipped:
		logger.InfoContext(ctx, "handler skipped", slog.String(log.ReasonField, o.Reason))
	default:
		attrs := []any{slog.String(log.ReasonField, o.Reason)}
		if o.Err != nil {
			attrs = append(attrs, log.Err(o.Err))
		}
		logger.ErrorContext(ctx, "handler failed", attrs...)
	}
}

type notifier struct {
	store Store
	push  push.Sender
}

// displayName resolves a profile name, falling back when the profile or its name is missing.
func (n *notifier) displayName(ctx context.Context, userID, fallback string) string {
	if userID == "" {
		return fallback
	}
	user, err := n.store.User(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.LoggerFromContext(ctx).WarnContext(ctx, "error while loading profile name",
				slog.String(log.UserIDField, userID), log.Err(err))
		}
		return fallback
	}
	if user.DisplayName == "" {
		return fallback
	}
	return user.DisplayName
}

// tokens loads the push tokens of a recipient. When ok is false the outcome says why nothing is sent.
func (n *notifier) tokens(ctx context.Context, userID string) (tokens []string, _ Outcome, ok bool) {
	if userID == "" {
		return nil, skipped("recipient unknown"), false
	}
	user, err := n.store.User(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, skipped("recipient profile not found"), false
	}
	if err != nil {
		return nil, failed("error while loading recipient", err), false
	}
	if len(user.FCMTokens) == 0 {
		return nil, skipped("recipient has no push tokens"), false
	}
	return user.FCMTokens, Outcome{}, true
}

func (n *notifier) send(ctx context.Context, recipientID string, msg push.Notification) Outcome {
	logger := log.LoggerFromContext(ctx).With(
		slog.String(log.RecipientIDField, recipientID),
		slog.Int(log.TokensField, len(msg.Tokens)),
	)
	logger.InfoContext(ctx, "sending notification")
	report, err := n.push.Send(ctx, msg)
	if err != nil {
		return failed("error while sending notification", err)
	}
	if report.FailureCount > 0 {
		logger.WarnContext(ctx, "some tokens were rejected",
			slog.Int("success", report.SuccessCount),
			slog.Int("failure", report.FailureCount),
		)
	}
	return delivered(1)
}

// firstAdded returns the first entry of after that is absent from before.
// Several entries added by one write yield only the first one, in list order.
func firstAdded(before, after []string) string {
	seen := make(map[string]struct{}, len(before))
	for _, id := range before {
		seen[id] = struct{}{}
	}
	for _, id := range after {
		if _, ok := seen[id]; !ok {
			return id
		}
	}
	return ""
}
