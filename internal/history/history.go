// Package history persists the most recent searched words in a single
// key-value slot.
package history

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// Key is the slot the history is stored under.
	Key = "collocation-search-history"
	// MaxEntries caps the number of remembered words.
	MaxEntries = 5
)

// KV is the subset of the key-value store the history needs.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Store loads and saves the history slot. Storage failures are logged and
// never returned; the store then serves its last known value.
type Store struct {
	kv  KV
	log zerolog.Logger

	mu    sync.Mutex
	words []string
}

func NewStore(kv KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Load reads the persisted history. A missing or unreadable slot yields an
// empty history.
func (s *Store) Load(ctx context.Context) []string {
	var words []string
	err := s.kv.Get(ctx, Key, &words)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		words = nil
	case err != nil:
		s.log.Warn().Err(err).Msg("failed to load search history")
		words = nil
	}

	words = normalize(words)

	s.mu.Lock()
	s.words = words
	s.mu.Unlock()
	return slices.Clone(words)
}

// Save persists words and remembers them in memory even if the write fails.
func (s *Store) Save(ctx context.Context, words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(ctx, slices.Clone(words))
}

// Push moves word to the front of the stored history and persists the
// result. Concurrent pushes are serialised so none of them is lost.
func (s *Store) Push(ctx context.Context, word string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	words := Push(s.words, word)
	s.saveLocked(ctx, words)
	return slices.Clone(words)
}

func (s *Store) saveLocked(ctx context.Context, words []string) {
	s.words = words

	if words == nil {
		words = []string{}
	}
	if err := s.kv.Set(ctx, Key, words); err != nil {
		s.log.Warn().Err(err).Msg("failed to save search history")
	}
}

// Words returns the last loaded or saved history.
func (s *Store) Words() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.words)
}

// Clear empties the history and returns the words it held.
func (s *Store) Clear(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := s.words
	s.words = nil
	if err := s.kv.Delete(ctx, Key); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear search history")
	}
	return cleared
}

// Push returns history with word moved to the front. Any earlier occurrence
// of the exact same word is dropped and the result is capped at MaxEntries.
func Push(history []string, word string) []string {
	out := make([]string, 0, MaxEntries)
	out = append(out, word)
	for _, w := range history {
		if len(out) == MaxEntries {
			break
		}
		if w == word {
			continue
		}
		out = append(out, w)
	}
	return out
}

// normalize repairs a slot written by something else: duplicates and empty
// strings are dropped and the length is capped.
func normalize(words []string) []string {
	var out []string
	for _, w := range words {
		if w == "" || slices.Contains(out, w) {
			continue
		}
		out = append(out, w)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
