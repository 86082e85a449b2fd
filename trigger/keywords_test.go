package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchKeywords(t *testing.T) {
	tests := []struct {
		name       string
		display    string
		categories []string
		expected   []string
	}{
		{
			name:       "name and categories",
			display:    "Juan Pérez",
			categories: []string{"Plomería", "Gas Natural"},
			expected:   []string{"juan", "pérez", "plomería", "gas", "natural"},
		},
		{
			name:       "duplicates collapse",
			display:    "Gas  gas",
			categories: []string{"GAS", "Electricidad gas"},
			expected:   []string{"gas", "electricidad"},
		},
		{
			name:     "whitespace only",
			display:  "  \t ",
			expected: []string{},
		},
		{
			name:       "no name",
			categories: []string{"Pintura"},
			expected:   []string{"pintura"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SearchKeywords(tt.display, tt.categories))
		})
	}
}

func TestKeywordIndexer(t *testing.T) {
	params := map[string]string{"userId": "u1"}
	tests := []struct {
		name     string
		before   map[string]any
		after    map[string]any
		status   Status
		expected []string
	}{
		{
			name:     "display name changed",
			before:   map[string]any{"display_name": "Ana", "userCategorias": list("Pintura")},
			after:    map[string]any{"display_name": "Ana Gómez", "userCategorias": list("Pintura")},
			status:   Delivered,
			expected: []string{"ana", "gómez", "pintura"},
		},
		{
			name:     "categories reordered",
			before:   map[string]any{"display_name": "Ana", "userCategorias": list("Pintura", "Gas")},
			after:    map[string]any{"display_name": "Ana", "userCategorias": list("Gas", "Pintura")},
			status:   Delivered,
			expected: []string{"ana", "gas", "pintura"},
		},
		{
			name:     "categories added where none existed",
			before:   map[string]any{"display_name": "Ana"},
			after:    map[string]any{"display_name": "Ana", "userCategorias": list()},
			status:   Delivered,
			expected: []string{"ana"},
		},
		{
			name:   "unrelated field changed",
			before: map[string]any{"display_name": "Ana", "userCategorias": list("Pintura"), "pais": "AR"},
			after:  map[string]any{"display_name": "Ana", "userCategorias": list("Pintura"), "pais": "UY"},
			status: Skipped,
		},
		{
			name:   "document deleted",
			before: map[string]any{"display_name": "Ana"},
			status: Skipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore()
			outcome := NewKeywordIndexer(s).Handle(context.Background(), updated(params, tt.before, tt.after))
			assert.Equal(t, tt.status, outcome.Status)
			if tt.status == Delivered {
				assert.Equal(t, 1, s.writes)
				assert.Equal(t, tt.expected, s.keywords["u1"])
			} else {
				assert.Zero(t, s.writes)
			}
		})
	}
}

func TestKeywordIndexerIdempotent(t *testing.T) {
	s := newFakeStore()
	indexer := NewKeywordIndexer(s)
	params := map[string]string{"userId": "u1"}

	before := map[string]any{"display_name": "Ana", "userCategorias": list("Pintura")}
	after := map[string]any{"display_name": "Ana Gómez", "userCategorias": list("Pintura", "Gas")}
	require.Equal(t, Delivered, indexer.Handle(context.Background(), updated(params, before, after)).Status)

	// the keyword write fires another update that touches only search_keywords
	written := map[string]any{
		"display_name":    "Ana Gómez",
		"userCategorias":  list("Pintura", "Gas"),
		"search_keywords": list(s.keywords["u1"]...),
	}
	outcome := indexer.Handle(context.Background(), updated(params, after, written))
	assert.Equal(t, Skipped, outcome.Status)
	assert.Equal(t, 1, s.writes)
}

func TestKeywordIndexerWriteFailure(t *testing.T) {
	s := newFakeStore()
	s.err = errors.New("unavailable")
	outcome := NewKeywordIndexer(s).Handle(context.Background(), updated(
		map[string]string{"userId": "u1"},
		map[string]any{"display_name": "Ana"},
		map[string]any{"display_name": "Eva"},
	))
	assert.Equal(t, Failed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, s.err)
}
