package ops

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/servicly/functions/callable"
	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/store"
	"golang.org/x/sync/errgroup"
)

const (
	chatIDSeparator    = "_"
	chatPlaceholder    = "Start the conversation..."
	unknownParticipant = "User"
)

// ChatRoomProvisioner returns the room shared by the caller and another user,
// creating and enriching it on first use.
type ChatRoomProvisioner struct {
	store ChatStore
}

func NewChatRoomProvisioner(store ChatStore) *ChatRoomProvisioner {
	return &ChatRoomProvisioner{store: store}
}

// ChatRoomID is the deterministic key of the room between two users. It also
// returns the participants in the sorted order the room stores them.
func ChatRoomID(a, b string) (string, []string) {
	ids := []string{a, b}
	slices.Sort(ids)
	return strings.Join(ids, chatIDSeparator), ids
}

func (p *ChatRoomProvisioner) Call(ctx context.Context, req *callable.Request) (any, error) {
	caller, err := req.RequireAuth()
	if err != nil {
		return nil, err
	}
	var in contract.GetOrCreateChatRequest
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.OtherUserID == "" {
		return nil, callable.NewError(callable.InvalidArgument, "otherUserId is required.")
	}

	logger := log.LoggerFromContext(ctx)
	chatID, participants := ChatRoomID(caller.UID, in.OtherUserID)

	created, err := p.store.CreateChatRoom(ctx, chatID, participants)
	if err != nil {
		return nil, callable.WrapError(callable.Unknown, "Could not create the chat.", err)
	}
	if !created {
		logger.DebugContext(ctx, "chat room already exists", slog.String(log.ChatIDField, chatID))
		return contract.GetOrCreateChatResponse{ChatID: chatID}, nil
	}

	if err := p.enrich(ctx, chatID, participants); err != nil {
		return nil, callable.WrapError(callable.Unknown, "Could not create the chat.", err)
	}
	logger.InfoContext(ctx, "chat room created", slog.String(log.ChatIDField, chatID))
	return contract.GetOrCreateChatResponse{ChatID: chatID}, nil
}

// enrich stores both participants' names and photos and the placeholder message.
func (p *ChatRoomProvisioner) enrich(ctx context.Context, chatID string, participants []string) error {
	users := make([]*contract.FirestoreUser, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range participants {
		g.Go(func() error {
			user, err := p.store.User(gctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			users[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	names := make(map[string]string, len(participants))
	photos := make(map[string]string, len(participants))
	for i, id := range participants {
		names[id] = unknownParticipant
		photos[id] = ""
		if u := users[i]; u != nil {
			if u.DisplayName != "" {
				names[id] = u.DisplayName
			}
			photos[id] = u.PhotoURL
		}
	}
	return p.store.SetChatRoomDetails(ctx, chatID, names, photos, chatPlaceholder)
}
