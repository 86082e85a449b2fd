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

// LikeNotifier tells a post author that someone liked the post.
type LikeNotifier struct {
	notifier
}

func NewLikeNotifier(store Store, sender push.Sender) *LikeNotifier {
	return &LikeNotifier{notifier{store: store, push: sender}}
}

func (l *LikeNotifier) Handle(ctx context.Context, change *event.Change) Outcome {
	if !change.Updated() {
		return skipped("not an update")
	}
	likesBefore := change.Before.Strings("likes")
	likesAfter := change.After.Strings("likes")
	if len(likesAfter) <= len(likesBefore) {
		return skipped("like list did not grow")
	}

	likerID := firstAdded(likesBefore, likesAfter)
	if likerID == "" {
		return skipped("no new liker")
	}
	postID := change.Params["postId"]
	authorID := change.After.String("authorId")
	if authorID == likerID {
		return skipped("author liked own post")
	}

	ctx = log.WithLogger(ctx, log.LoggerFromContext(ctx).With(slog.String(log.PostIDField, postID)))
	likerName := l.displayName(ctx, likerID, unknownSender)
	tokens, outcome, ok := l.tokens(ctx, authorID)
	if !ok {
		return outcome
	}

	return l.send(ctx, authorID, push.Notification{
		Title:  "Someone liked your post!",
		Body:   fmt.Sprintf("%s liked your post.", likerName),
		Data:   map[string]string{"postId": postID, "type": "new_like"},
		Tokens: tokens,
	})
}

// CommentNotifier tells a post author about a new comment.
type CommentNotifier struct {
	notifier
}

func NewCommentNotifier(store Store, sender push.Sender) *CommentNotifier {
	return &CommentNotifier{notifier{store: store, push: sender}}
}

func (c *CommentNotifier) Handle(ctx context.Context, change *event.Change) Outcome {
	if !change.Created() {
		return skipped("not a creation")
	}
	var comment contract.FirestoreComment
	if err := change.After.DataTo(&comment); err != nil {
		return failed("error while decoding comment", err)
	}

	postID := change.Params["postId"]
	ctx = log.WithLogger(ctx, log.LoggerFromContext(ctx).With(slog.String(log.PostIDField, postID)))

	post, err := c.store.Post(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return skipped("post does not exist")
	}
	if err != nil {
		return failed("error while loading post", err)
	}
	if post.AuthorID == comment.UserID {
		return skipped("author commented on own post")
	}

	commenterName := c.displayName(ctx, comment.UserID, unknownSender)
	tokens, outcome, ok := c.tokens(ctx, post.AuthorID)
	if !ok {
		return outcome
	}

	return c.send(ctx, post.AuthorID, push.Notification{
		Title:  "New comment on your post!",
		Body:   fmt.Sprintf("%s commented on your publication.", commenterName),
		Data:   map[string]string{"postId": postID, "type": "new_comment"},
		Tokens: tokens,
	})
}
