package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/servicly/functions/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmulatorStore connects to the Firestore emulator; the tests are skipped without it.
func newEmulatorStore(t *testing.T) (*Store, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "servicly-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return New(client), client
}

func TestUserNotFound(t *testing.T) {
	s, _ := newEmulatorStore(t)
	ctx := context.Background()

	_, err := s.User(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.User(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateChatRoomOnce(t *testing.T) {
	s, _ := newEmulatorStore(t)
	ctx := context.Background()
	chatID := uuid.NewString()

	created, err := s.CreateChatRoom(ctx, chatID, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, s.SetChatRoomDetails(ctx, chatID,
		map[string]string{"a": "Ana", "b": "User"},
		map[string]string{"a": "", "b": ""},
		"Start the conversation...",
	))

	created, err = s.CreateChatRoom(ctx, chatID, []string{"a", "b"})
	require.NoError(t, err)
	assert.False(t, created)

	chat, err := s.ChatRoom(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, chat.Participants)
	assert.Equal(t, "Ana", chat.ParticipantNames["a"])
}

func TestSetStripeAccountIDKeepsFirst(t *testing.T) {
	s, client := newEmulatorStore(t)
	ctx := context.Background()
	userID := uuid.NewString()
	_, err := client.Collection(contract.UsersCollection).Doc(userID).Set(ctx, map[string]any{"email": "pro@example.com"})
	require.NoError(t, err)

	stored, err := s.SetStripeAccountID(ctx, userID, "acct_1")
	require.NoError(t, err)
	assert.Equal(t, "acct_1", stored)

	stored, err = s.SetStripeAccountID(ctx, userID, "acct_2")
	require.NoError(t, err)
	assert.Equal(t, "acct_1", stored)

	user, err := s.User(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "acct_1", user.StripeAccountID)
}

func TestProvidersFor(t *testing.T) {
	s, client := newEmulatorStore(t)
	ctx := context.Background()
	category := "plomeria-" + uuid.NewString()

	users := map[string]map[string]any{
		"provider": {"rol_user": contract.RoleProvider, "pais": "AR", "userCategorias": []string{category}},
		"both":     {"rol_user": contract.RoleBoth, "pais": "AR", "userCategorias": []string{"gas", category}},
		"client":   {"rol_user": "Cliente", "pais": "AR", "userCategorias": []string{category}},
		"abroad":   {"rol_user": contract.RoleProvider, "pais": "UY", "userCategorias": []string{category}},
	}
	ids := map[string]string{}
	for name, data := range users {
		id := name + "-" + uuid.NewString()
		ids[id] = name
		_, err := client.Collection(contract.UsersCollection).Doc(id).Set(ctx, data)
		require.NoError(t, err)
	}

	found, err := s.ProvidersFor(ctx, "AR", category)
	require.NoError(t, err)
	var names []string
	for _, u := range found {
		names = append(names, ids[u.ID])
	}
	assert.ElementsMatch(t, []string{"provider", "both"}, names)
}
