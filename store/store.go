package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/servicly/functions/contract"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrNotFound = errors.New("document not found")

// Store reads and writes the marketplace documents in Firestore.
type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) users() *firestore.CollectionRef {
	return s.client.Collection(contract.UsersCollection)
}

func (s *Store) User(ctx context.Context, userID string) (*contract.FirestoreUser, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	var user contract.FirestoreUser
	if err := s.get(ctx, s.users().Doc(userID), &user); err != nil {
		return nil, err
	}
	user.ID = userID
	return &user, nil
}

func (s *Store) ChatRoom(ctx context.Context, chatID string) (*contract.FirestoreChat, error) {
	if chatID == "" {
		return nil, ErrNotFound
	}
	var chat contract.FirestoreChat
	if err := s.get(ctx, s.client.Collection(contract.ChatsCollection).Doc(chatID), &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *Store) Post(ctx context.Context, postID string) (*contract.FirestorePost, error) {
	if postID == "" {
		return nil, ErrNotFound
	}
	var post contract.FirestorePost
	if err := s.get(ctx, s.client.Collection(contract.PostsCollection).Doc(postID), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) get(ctx context.Context, ref *firestore.DocumentRef, v any) error {
	doc, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", ref.Path, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !doc.Exists() {
		return fmt.Errorf("%s: %w", ref.Path, ErrNotFound)
	}
	return doc.DataTo(v)
}

func (s *Store) SetSearchKeywords(ctx context.Context, userID string, keywords []string) error {
	_, err := s.users().Doc(userID).Update(ctx, []firestore.Update{
		{Path: contract.FieldSearchKeywords, Value: keywords},
	})
	return err
}

// ProvidersFor returns provider-capable users of a country that offer the category.
func (s *Store) ProvidersFor(ctx context.Context, country, category string) ([]*contract.FirestoreUser, error) {
	iter := s.users().
		Where("rol_user", "in", []string{contract.RoleProvider, contract.RoleBoth}).
		Where("pais", "==", country).
		Where("userCategorias", "array-contains", category).
		Documents(ctx)
	defer iter.Stop()

	var users []*contract.FirestoreUser
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var user contract.FirestoreUser
		if err := doc.DataTo(&user); err != nil {
			return nil, fmt.Errorf("decoding user %s: %w", doc.Ref.ID, err)
		}
		user.ID = doc.Ref.ID
		users = append(users, &user)
	}
	return users, nil
}

// CreateChatRoom creates the room with its participants unless it already exists.
// It reports whether this call created it.
func (s *Store) CreateChatRoom(ctx context.Context, chatID string, participants []string) (bool, error) {
	ref := s.client.Collection(contract.ChatsCollection).Doc(chatID)
	doc, err := ref.Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return false, err
	}
	if doc != nil && doc.Exists() {
		return false, nil
	}

	_, err = ref.Create(ctx, map[string]any{"participantes": participants})
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetChatRoomDetails stores the participant names/photos and the placeholder last message,
// stamped with the server time.
func (s *Store) SetChatRoomDetails(ctx context.Context, chatID string, names, photos map[string]string, placeholder string) error {
	_, err := s.client.Collection(contract.ChatsCollection).Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "participantesNombres", Value: names},
		{Path: "participantesFotos", Value: photos},
		{Path: "ultimoMensaje", Value: map[string]any{
			"texto":     placeholder,
			"timestamp": firestore.ServerTimestamp,
			"idAutor":   "",
		}},
	})
	return err
}

// SetStripeAccountID caches the account id on the profile unless one is already there,
// and returns the id that is stored after the call.
func (s *Store) SetStripeAccountID(ctx context.Context, userID, accountID string) (string, error) {
	ref := s.users().Doc(userID)
	stored := accountID
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if existing, _ := doc.Data()[contract.FieldStripeAccount].(string); existing != "" {
			stored = existing
			return nil
		}
		stored = accountID
		return tx.Update(ref, []firestore.Update{{Path: contract.FieldStripeAccount, Value: accountID}})
	})
	if err != nil {
		return "", err
	}
	return stored, nil
}
