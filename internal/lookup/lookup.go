// Package lookup turns a raw search input into collocations: it validates
// the word, consults the cache, calls the configured analyzer and applies the
// search history policy.
package lookup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mgomes/colloc/internal/collocation"
	"github.com/mgomes/colloc/internal/history"
	"github.com/mgomes/colloc/internal/related"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "lookup:"

// ErrEmptyWord is returned for an empty or whitespace-only input. No backend
// call is made.
var ErrEmptyWord = errors.New("please enter a word")

// Result is the outcome of a successful lookup. An empty Collocations slice
// means the backend found nothing; the history is then left unchanged.
type Result struct {
	Word         string
	Collocations []collocation.Collocation
	History      []string
	Cached       bool
}

func (r Result) Empty() bool {
	return len(r.Collocations) == 0
}

// Cache stores lookup results for a limited time.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RelatedIndex records looked-up words for similarity queries.
type RelatedIndex interface {
	Enabled() bool
	Add(ctx context.Context, word string) error
	Forget(ctx context.Context, word string) error
	Related(ctx context.Context, word string, limit int) ([]related.Result, error)
}

type Service struct {
	mu       sync.RWMutex
	analyzer collocation.Analyzer

	history  *history.Store
	cache    Cache
	cacheTTL time.Duration
	related  RelatedIndex
	group    singleflight.Group
	log      zerolog.Logger
}

type Option func(*Service)

// WithCache enables result caching. A non-positive ttl disables it.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

func WithRelated(idx RelatedIndex) Option {
	return func(s *Service) {
		s.related = idx
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

func New(analyzer collocation.Analyzer, hist *history.Store, opts ...Option) *Service {
	s := &Service{
		analyzer: analyzer,
		history:  hist,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAnalyzer swaps the backend, e.g. after the configuration changed.
func (s *Service) SetAnalyzer(a collocation.Analyzer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzer = a
}

func (s *Service) currentAnalyzer() collocation.Analyzer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyzer
}

// History returns the current search history, most recent first.
func (s *Service) History() []string {
	return s.history.Words()
}

// ClearHistory forgets the recent searches, including their entries in the
// related-words index.
func (s *Service) ClearHistory(ctx context.Context) {
	cleared := s.history.Clear(ctx)
	if s.related == nil || !s.related.Enabled() {
		return
	}
	for _, w := range cleared {
		if err := s.related.Forget(ctx, w); err != nil {
			s.log.Warn().Err(err).Str("word", w).Msg("failed to forget related word")
		}
	}
}

// Lookup resolves the collocations of raw after trimming it.
//
// Errors are ErrEmptyWord for blank input or a *collocation.ServiceError when
// the backend fails. Only a successful, non-empty lookup updates the history.
func (s *Service) Lookup(ctx context.Context, raw string) (Result, error) {
	word := strings.TrimSpace(raw)
	if word == "" {
		return Result{}, ErrEmptyWord
	}

	res := Result{Word: word}

	items, cached := s.fromCache(ctx, word)
	if !cached {
		var err error
		items, err = s.analyze(ctx, word)
		if err != nil {
			s.log.Warn().Err(err).Str("word", word).Msg("lookup failed")
			res.History = s.history.Words()
			return res, collocation.NewServiceError(err)
		}
	}

	res.Collocations = items
	res.Cached = cached
	if res.Empty() {
		res.History = s.history.Words()
		s.log.Info().Str("word", word).Msg("lookup returned no collocations")
		return res, nil
	}

	if !cached {
		s.toCache(ctx, word, items)
	}

	res.History = s.history.Push(ctx, word)

	if s.related != nil && s.related.Enabled() {
		if err := s.related.Add(ctx, word); err != nil {
			s.log.Warn().Err(err).Str("word", word).Msg("failed to index related word")
		}
	}

	s.log.Info().
		Str("word", word).
		Int("collocations", len(items)).
		Bool("cached", cached).
		Msg("lookup complete")
	return res, nil
}

// Related returns previously looked-up words close to word.
func (s *Service) Related(ctx context.Context, word string, limit int) ([]string, error) {
	if s.related == nil {
		return nil, related.ErrDisabled
	}
	results, err := s.related.Related(ctx, word, limit)
	if err != nil {
		return nil, err
	}
	words := make([]string, len(results))
	for i, r := range results {
		words[i] = r.Word
	}
	return words, nil
}

// analyze calls the backend, sharing one in-flight call between concurrent
// lookups of the same word. The shared call outlives a cancelled caller so
// the other waiters still get its result.
func (s *Service) analyze(ctx context.Context, word string) ([]collocation.Collocation, error) {
	analyzer := s.currentAnalyzer()
	if analyzer == nil {
		return nil, &collocation.ServiceError{Message: "No collocation provider is configured"}
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(word, func() (any, error) {
		return analyzer.Analyze(shared, word)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		items, _ := r.Val.([]collocation.Collocation)
		return items, nil
	}
}

func (s *Service) fromCache(ctx context.Context, word string) ([]collocation.Collocation, bool) {
	if s.cache == nil {
		return nil, false
	}
	var items []collocation.Collocation
	if err := s.cache.Get(ctx, cacheKeyPrefix+word, &items); err != nil {
		return nil, false
	}
	return items, len(items) > 0
}

func (s *Service) toCache(ctx context.Context, word string, items []collocation.Collocation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetTTL(ctx, cacheKeyPrefix+word, items, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("word", word).Msg("failed to cache lookup")
	}
}
