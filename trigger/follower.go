package trigger

import (
	"context"
	"fmt"

	"github.com/servicly/functions/event"
	"github.com/servicly/functions/push"
)

// FollowerNotifier tells a user about a new follower. The followed profile is the
// changed document itself, so its own tokens are the target.
type FollowerNotifier struct {
	notifier
}

func NewFollowerNotifier(store Store, sender push.Sender) *FollowerNotifier {
	return &FollowerNotifier{notifier{store: store, push: sender}}
}

func (f *FollowerNotifier) Handle(ctx context.Context, change *event.Change) Outcome {
	if !change.Updated() {
		return skipped("not an update")
	}
	followersBefore := change.Before.Strings("followers")
	followersAfter := change.After.Strings("followers")
	if len(followersAfter) <= len(followersBefore) {
		return skipped("follower list did not grow")
	}

	followerID := firstAdded(followersBefore, followersAfter)
	if followerID == "" {
		return skipped("no new follower")
	}
	followedID := change.Params["followedId"]
	if followedID == followerID {
		return skipped("user follows themself")
	}

	followerName := f.displayName(ctx, followerID, unknownSender)
	tokens := change.After.Strings("fcmTokens")
	if len(tokens) == 0 {
		return skipped("recipient has no push tokens")
	}

	return f.send(ctx, followedID, push.Notification{
		Title:  "You have a new follower!",
		Body:   fmt.Sprintf("%s is now following you.", followerName),
		Data:   map[string]string{"profileId": followerID, "type": "new_follower"},
		Tokens: tokens,
	})
}
