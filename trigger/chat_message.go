package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/event"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/push"
	"github.com/servicly/functions/store"
)

const attachmentBody = "Sent you an attachment."

// ChatMessageNotifier pushes a new chat message to the other participant of the room.
type ChatMessageNotifier struct {
	notifier
}

func NewChatMessageNotifier(store Store, sender push.Sender) *ChatMessageNotifier {
	return &ChatMessageNotifier{notifier{store: store, push: sender}}
}

func (c *ChatMessageNotifier) Handle(ctx context.Context, change *event.Change) Outcome {
	if change.Before.Exists {
		return skipped("not a creation")
	}
	if !change.After.Exists || len(change.After.Data) == 0 {
		return skipped("message has no data")
	}
	var msg contract.FirestoreMessage
	if err := change.After.DataTo(&msg); err != nil {
		return failed("error while decoding message", err)
	}

	chatID := change.Params["chatId"]
	logger := log.LoggerFromContext(ctx).With(slog.String(log.ChatIDField, chatID))
	ctx = log.WithLogger(ctx, logger)

	room, err := c.store.ChatRoom(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		return skipped("chat room does not exist")
	}
	if err != nil {
		return failed("error while loading chat room", err)
	}

	recipientID := otherParticipant(room.Participants, msg.SenderID)
	if recipientID == "" {
		return skipped("no recipient other than the sender")
	}

	tokens, outcome, ok := c.tokens(ctx, recipientID)
	if !ok {
		return outcome
	}

	senderName := c.displayName(ctx, msg.SenderID, unknownSender)
	body := msg.Text
	if body == "" {
		body = attachmentBody
	}

	return c.send(ctx, recipientID, push.Notification{
		Title: fmt.Sprintf("New message from %s", senderName),
		Body:  body,
		Data: map[string]string{
			"type":   "new_contract_message",
			"chatId": chatID,
		},
		Tokens: tokens,
	})
}

// otherParticipant returns the first of the two declared participants that is not the sender.
func otherParticipant(participants []string, senderID string) string {
	if len(participants) > 2 {
		participants = participants[:2]
	}
	for _, id := range participants {
		if id != "" && id != senderID {
			return id
		}
	}
	return ""
}
