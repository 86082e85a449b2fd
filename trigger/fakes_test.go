package trigger

import (
	"context"
	"slices"

	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/event"
	"github.com/servicly/functions/push"
	"github.com/servicly/functions/store"
)

type fakeStore struct {
	users    map[string]*contract.FirestoreUser
	chats    map[string]*contract.FirestoreChat
	posts    map[string]*contract.FirestorePost
	keywords map[string][]string
	writes   int
	err      error
}

func newFakeStore(users ...*contract.FirestoreUser) *fakeStore {
	s := &fakeStore{
		users:    make(map[string]*contract.FirestoreUser),
		chats:    make(map[string]*contract.FirestoreChat),
		posts:    make(map[string]*contract.FirestorePost),
		keywords: make(map[string][]string),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) User(_ context.Context, userID string) (*contract.FirestoreUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) ChatRoom(_ context.Context, chatID string) (*contract.FirestoreChat, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.chats[chatID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) Post(_ context.Context, postID string) (*contract.FirestorePost, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.posts[postID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

// ProvidersFor applies the same filters as the Firestore query.
func (s *fakeStore) ProvidersFor(_ context.Context, country, category string) ([]*contract.FirestoreUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*contract.FirestoreUser
	for _, u := range s.users {
		if u.Role != contract.RoleProvider && u.Role != contract.RoleBoth {
			continue
		}
		if u.Country != country || !slices.Contains(u.Categories, category) {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b *contract.FirestoreUser) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *fakeStore) SetSearchKeywords(_ context.Context, userID string, keywords []string) error {
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.keywords[userID] = keywords
	return nil
}

type fakeSender struct {
	sent []push.Notification
	// failures keyed by the first token of a notification
	failures map[string]error
}

func (f *fakeSender) Send(_ context.Context, n push.Notification) (*push.Report, error) {
	if len(n.Tokens) > 0 {
		if err, ok := f.failures[n.Tokens[0]]; ok {
			return nil, err
		}
	}
	f.sent = append(f.sent, n)
	return &push.Report{SuccessCount: len(n.Tokens)}, nil
}

func (f *fakeSender) recipients() [][]string {
	var out [][]string
	for _, n := range f.sent {
		out = append(out, n.Tokens)
	}
	return out
}

func snapshot(data map[string]any) event.Snapshot {
	if data == nil {
		return event.Snapshot{}
	}
	return event.Snapshot{Exists: true, Data: data}
}

func updated(params map[string]string, before, after map[string]any) *event.Change {
	return &event.Change{ID: "evt", Params: params, Before: snapshot(before), After: snapshot(after)}
}

func created(params map[string]string, after map[string]any) *event.Change {
	return &event.Change{ID: "evt", Params: params, After: snapshot(after)}
}

func list(ids ...string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
