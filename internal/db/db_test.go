package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T, embedDim int) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), embedDim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDatabaseOpen(t *testing.T) {
	db := setupTestDB(t, 4) // small dimension for testing
	assert.True(t, db.VectorsEnabled())
	assert.Equal(t, 4, db.EmbedDim())
}

func TestDatabaseOpen_without_vectors(t *testing.T) {
	db := setupTestDB(t, 0)
	assert.False(t, db.VectorsEnabled())

	results, err := db.SearchSimilar(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestKV_SetAndGet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 0)

	require.NoError(t, db.Set(ctx, "history", []string{"strong", "quick"}))

	var got []string
	require.NoError(t, db.Get(ctx, "history", &got))
	assert.Equal(t, []string{"strong", "quick"}, got)
}

func TestKV_GetNotFound(t *testing.T) {
	db := setupTestDB(t, 0)

	var v string
	err := db.Get(context.Background(), "missing", &v)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestKV_Overwrite(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 0)

	require.NoError(t, db.Set(ctx, "key", "first"))
	require.NoError(t, db.Set(ctx, "key", "second"))

	var got string
	require.NoError(t, db.Get(ctx, "key", &got))
	assert.Equal(t, "second", got)
}

func TestKV_Delete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 0)

	require.NoError(t, db.Set(ctx, "key", "value"))
	require.NoError(t, db.Delete(ctx, "key"))

	var got string
	assert.ErrorIs(t, db.Get(ctx, "key", &got), sql.ErrNoRows)
}

func TestKV_SetTTL_expires(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 0)

	require.NoError(t, db.SetTTL(ctx, "short", "value", time.Nanosecond))
	require.NoError(t, db.SetTTL(ctx, "long", "value", time.Hour))
	time.Sleep(time.Millisecond)

	var got string
	assert.ErrorIs(t, db.Get(ctx, "short", &got), sql.ErrNoRows)

	require.NoError(t, db.Get(ctx, "long", &got))
	assert.Equal(t, "value", got)
}

func TestKV_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 0)

	require.NoError(t, db.SetTTL(ctx, "a", 1, time.Nanosecond))
	require.NoError(t, db.SetTTL(ctx, "b", 2, time.Nanosecond))
	require.NoError(t, db.Set(ctx, "c", 3))
	time.Sleep(time.Millisecond)

	n, err := db.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWordCRUD(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 4)

	id, err := db.UpsertWord(ctx, "strong", 1000)
	require.NoError(t, err)
	assert.NotZero(t, id)

	again, err := db.UpsertWord(ctx, "strong", 2000)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	w, err := db.GetWord(ctx, "strong")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, int64(2000), w.IndexedAt)

	require.NoError(t, db.DeleteWord(ctx, "strong"))

	w, err = db.GetWord(ctx, "strong")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestEmbeddingOperations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 4)

	strongID, _ := db.UpsertWord(ctx, "strong", 1000)
	quickID, _ := db.UpsertWord(ctx, "quick", 1000)

	strongEmb, err := sqlite_vec.SerializeFloat32([]float32{0.1, 0.2, 0.3, 0.4})
	require.NoError(t, err)
	quickEmb, err := sqlite_vec.SerializeFloat32([]float32{0.9, 0.1, 0.0, 0.0})
	require.NoError(t, err)

	require.NoError(t, db.SetEmbedding(ctx, strongID, strongEmb))
	require.NoError(t, db.SetEmbedding(ctx, quickID, quickEmb))
	// Replacing an embedding must not fail on the primary key.
	require.NoError(t, db.SetEmbedding(ctx, strongID, strongEmb))

	results, err := db.SearchSimilar(ctx, strongEmb, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "strong", results[0].Word.Word)
	assert.Equal(t, "quick", results[1].Word.Word)
}

func TestWordCount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, 0)

	count, _ := db.WordCount(ctx)
	assert.Equal(t, 0, count)

	_, _ = db.UpsertWord(ctx, "a", 1)
	_, _ = db.UpsertWord(ctx, "b", 1)

	count, _ = db.WordCount(ctx)
	assert.Equal(t, 2, count)
}
