package trigger

import (
	"context"
	"testing"

	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/event"
	"github.com/stretchr/testify/assert"
)

// Every handler acts on one kind of write; the other kinds are skipped even when
// the data alone would trigger a notification.
func TestHandlersIgnoreOtherEventKinds(t *testing.T) {
	budget := map[string]string{"presupuestoId": "b1"}
	tests := []struct {
		name   string
		build  func(s *fakeStore, sender *fakeSender) Handler
		change *event.Change
	}{
		{
			name:   "new budget notifier on an edited budget",
			build:  func(s *fakeStore, sender *fakeSender) Handler { return NewNewBudgetNotifier(s, sender) },
			change: updated(budget, budgetDoc("ENVIADO"), budgetDoc("EN_REVISION")),
		},
		{
			name:   "budget status notifier on a budget created as accepted",
			build:  func(s *fakeStore, sender *fakeSender) Handler { return NewBudgetStatusNotifier(s, sender) },
			change: created(budget, budgetDoc(contract.BudgetAcceptedByClient)),
		},
		{
			name:  "like notifier on a created post",
			build: func(s *fakeStore, sender *fakeSender) Handler { return NewLikeNotifier(s, sender) },
			change: created(map[string]string{"postId": "p1"},
				map[string]any{"userId": "author", "likes": list("a")}),
		},
		{
			name:  "follower notifier on a created user",
			build: func(s *fakeStore, sender *fakeSender) Handler { return NewFollowerNotifier(s, sender) },
			change: created(map[string]string{"followedId": "u1"},
				map[string]any{"followers": list("a"), "fcmTokens": list("t1")}),
		},
		{
			name:  "comment notifier on an edited comment",
			build: func(s *fakeStore, sender *fakeSender) Handler { return NewCommentNotifier(s, sender) },
			change: updated(map[string]string{"postId": "p1", "commentId": "c1"},
				map[string]any{"userId": "a", "texto": "Genial"},
				map[string]any{"userId": "a", "texto": "Genial!"}),
		},
		{
			name:  "chat message notifier on an edited message",
			build: func(s *fakeStore, sender *fakeSender) Handler { return NewChatMessageNotifier(s, sender) },
			change: updated(map[string]string{"chatId": "a_author", "messageId": "m1"},
				map[string]any{"senderId": "a", "texto": "hola"},
				map[string]any{"senderId": "a", "texto": "hola!"}),
		},
		{
			name:  "request fanout on an edited request",
			build: func(s *fakeStore, sender *fakeSender) Handler { return NewNewRequestFanout(s, sender) },
			change: updated(map[string]string{"solicitudId": "s1"}, requestDoc(), requestDoc()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore(
				user("a", "Ana", "t-a"),
				user("author", "Autor", "t-author"),
				user("provider", "Pro", "t-provider"),
				user("client", "Cli", "t-client"),
			)
			s.posts["p1"] = &contract.FirestorePost{AuthorID: "author"}
			s.chats["a_author"] = &contract.FirestoreChat{Participants: []string{"a", "author"}}
			sender := &fakeSender{}

			outcome := tt.build(s, sender).Handle(context.Background(), tt.change)
			assert.Equal(t, Skipped, outcome.Status, outcome.Reason)
			assert.Empty(t, sender.sent)
		})
	}
}

func TestKeywordIndexerIgnoresCreatedUser(t *testing.T) {
	s := newFakeStore()
	outcome := NewKeywordIndexer(s).Handle(context.Background(), created(
		map[string]string{"userId": "u1"},
		map[string]any{"display_name": "Ana", "userCategorias": list("Pintura")},
	))
	assert.Equal(t, Skipped, outcome.Status)
	assert.Zero(t, s.writes)
}
