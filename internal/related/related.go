// Package related finds previously looked-up words that are semantically
// close to a given word, using embeddings stored in sqlite-vec.
package related

import (
	"context"
	"errors"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mgomes/colloc/internal/db"
)

const DefaultLimit = 5

var ErrDisabled = errors.New("related words need an embedding provider")

// Embedder turns a word into a vector of Dim floats.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

type Index struct {
	db       *db.DB
	embedder Embedder
}

type Result struct {
	Word     string
	Distance float64
}

// New creates an index. A nil embedder disables the index.
func New(database *db.DB, embedder Embedder) *Index {
	return &Index{
		db:       database,
		embedder: embedder,
	}
}

// Enabled reports whether an embedder is set and its vectors fit the
// database's vector table.
func (idx *Index) Enabled() bool {
	return idx != nil &&
		idx.embedder != nil &&
		idx.db.VectorsEnabled() &&
		idx.embedder.Dim() == idx.db.EmbedDim()
}

// Add embeds word and stores it for later similarity queries. A word that is
// already indexed only has its timestamp refreshed.
func (idx *Index) Add(ctx context.Context, word string) error {
	if !idx.Enabled() {
		return ErrDisabled
	}

	existing, err := idx.db.GetWord(ctx, word)
	if err != nil {
		return fmt.Errorf("failed to read word: %w", err)
	}
	if existing != nil {
		if _, err := idx.db.UpsertWord(ctx, word, time.Now().Unix()); err != nil {
			return fmt.Errorf("failed to store word: %w", err)
		}
		return nil
	}

	emb, err := idx.embed(ctx, word)
	if err != nil {
		return err
	}

	wordID, err := idx.db.UpsertWord(ctx, word, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store word: %w", err)
	}

	if err := idx.db.SetEmbedding(ctx, wordID, emb); err != nil {
		// A word row without a vector would never be embedded again.
		_ = idx.db.DeleteWord(ctx, word)
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// Forget removes word and its embedding from the index.
func (idx *Index) Forget(ctx context.Context, word string) error {
	if !idx.Enabled() {
		return ErrDisabled
	}
	if err := idx.db.DeleteWord(ctx, word); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// Related returns up to limit indexed words closest to word, nearest first.
// The word itself is never part of the result.
func (idx *Index) Related(ctx context.Context, word string, limit int) ([]Result, error) {
	if !idx.Enabled() {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	count, err := idx.db.WordCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count words: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	emb, err := idx.embed(ctx, word)
	if err != nil {
		return nil, err
	}

	candidates, err := idx.db.SearchSimilar(ctx, emb, limit+1)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]Result, 0, limit)
	for _, c := range candidates {
		if c.Word.Word == word {
			continue
		}
		results = append(results, Result{Word: c.Word.Word, Distance: c.Distance})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func (idx *Index) embed(ctx context.Context, word string) ([]byte, error) {
	vec, err := idx.embedder.EmbedQuery(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %q: %w", word, err)
	}

	embBytes, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize embedding: %w", err)
	}
	return embBytes, nil
}
