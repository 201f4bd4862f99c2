package db

import (
	"context"
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the local SQLite database holding the key-value slots (search
// history, cached lookups) and the word vectors used for related words.
type DB struct {
	conn     *sql.DB
	embedDim int
}

type Word struct {
	ID        int64
	Word      string
	IndexedAt int64
}

type WordWithDistance struct {
	Word
	Distance float64
}

func init() {
	sqlite_vec.Auto()
}

// Open opens or creates the database at path. An embedDim of zero skips the
// vector table; VectorsEnabled then reports false.
func Open(path string, embedDim int) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, embedDim: embedDim}
	if err := db.init(); err != nil {
		conn.Close() //nolint:errcheck
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// VectorsEnabled reports whether the word vector table exists.
func (db *DB) VectorsEnabled() bool {
	return db.embedDim > 0
}

func (db *DB) EmbedDim() int {
	return db.embedDim
}

func (db *DB) init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS words (
			id INTEGER PRIMARY KEY,
			word TEXT UNIQUE NOT NULL,
			indexed_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_words_word ON words(word);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if !db.VectorsEnabled() {
		return nil
	}

	var vecVersion string
	if err := db.conn.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		return fmt.Errorf("sqlite-vec not available: %w", err)
	}

	vecSchema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS vec_words USING vec0(
			word_id INTEGER PRIMARY KEY,
			embedding float[%d]
		);
	`, db.embedDim)

	_, err := db.conn.Exec(vecSchema)
	return err
}

func (db *DB) GetWord(ctx context.Context, word string) (*Word, error) {
	var w Word
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, word, indexed_at FROM words WHERE word = ?",
		word,
	).Scan(&w.ID, &w.Word, &w.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (db *DB) UpsertWord(ctx context.Context, word string, indexedAt int64) (int64, error) {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO words (word, indexed_at)
		VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET
			indexed_at = excluded.indexed_at
	`, word, indexedAt)
	if err != nil {
		return 0, err
	}

	// LastInsertId is not reliable for the update branch of an upsert.
	var id int64
	if err := db.conn.QueryRowContext(ctx, "SELECT id FROM words WHERE word = ?", word).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// SetEmbedding stores the embedding of a word, replacing any previous one.
func (db *DB) SetEmbedding(ctx context.Context, wordID int64, embedding []byte) error {
	if !db.VectorsEnabled() {
		return fmt.Errorf("word vectors are disabled")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM vec_words WHERE word_id = ?", wordID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO vec_words (word_id, embedding) VALUES (?, ?)",
		wordID, embedding,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) DeleteWord(ctx context.Context, word string) error {
	var wordID int64
	err := db.conn.QueryRowContext(ctx, "SELECT id FROM words WHERE word = ?", word).Scan(&wordID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if db.VectorsEnabled() {
		if _, err := db.conn.ExecContext(ctx, "DELETE FROM vec_words WHERE word_id = ?", wordID); err != nil {
			return err
		}
	}

	_, err = db.conn.ExecContext(ctx, "DELETE FROM words WHERE id = ?", wordID)
	return err
}

// SearchSimilar returns the words whose embeddings are nearest to
// queryEmbedding, closest first.
func (db *DB) SearchSimilar(ctx context.Context, queryEmbedding []byte, limit int) ([]WordWithDistance, error) {
	if !db.VectorsEnabled() {
		return nil, nil
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			v.word_id,
			v.distance,
			w.word,
			w.indexed_at
		FROM vec_words v
		JOIN words w ON w.id = v.word_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, queryEmbedding, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var results []WordWithDistance
	for rows.Next() {
		var w WordWithDistance
		if err := rows.Scan(&w.ID, &w.Distance, &w.Word.Word, &w.IndexedAt); err != nil {
			return nil, err
		}
		results = append(results, w)
	}

	return results, rows.Err()
}

func (db *DB) WordCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM words").Scan(&count)
	return count, err
}
