package trigger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/servicly/functions/event"
	"github.com/servicly/functions/log"
)

const (
	fieldDisplayName = "display_name"
	fieldCategories  = "userCategorias"
)

type KeywordWriter interface {
	SetSearchKeywords(ctx context.Context, userID string, keywords []string) error
}

// KeywordIndexer keeps search_keywords equal to the lowercase words of the display
// name and of every category. It runs on user profile updates.
type KeywordIndexer struct {
	store KeywordWriter
}

func NewKeywordIndexer(store KeywordWriter) *KeywordIndexer {
	return &KeywordIndexer{store: store}
}

func (k *KeywordIndexer) Handle(ctx context.Context, change *event.Change) Outcome {
	if !change.Updated() {
		return skipped("not an update")
	}
	if !change.FieldChanged(fieldDisplayName) && !change.FieldChanged(fieldCategories) {
		return skipped("display name and categories unchanged")
	}

	userID := change.Params["userId"]
	keywords := SearchKeywords(change.After.String(fieldDisplayName), change.After.Strings(fieldCategories))
	log.LoggerFromContext(ctx).DebugContext(ctx, "updating search keywords",
		slog.String(log.UserIDField, userID),
		slog.Any("keywords", keywords),
	)
	if err := k.store.SetSearchKeywords(ctx, userID, keywords); err != nil {
		return failed("error while updating search keywords", err)
	}
	return delivered(1)
}

// SearchKeywords splits the name and the categories on whitespace, lowercases every word
// and drops duplicates, keeping first-seen order.
func SearchKeywords(displayName string, categories []string) []string {
	keywords := make([]string, 0)
	seen := make(map[string]struct{})
	add := func(text string) {
		for _, word := range strings.Fields(strings.ToLower(text)) {
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			keywords = append(keywords, word)
		}
	}
	add(displayName)
	for _, c := range categories {
		add(c)
	}
	return keywords
}
