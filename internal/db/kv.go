package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Get retrieves and decodes the value stored under key into dest.
// Returns an error wrapping sql.ErrNoRows if the key is missing or expired;
// expired entries are deleted lazily.
func (db *DB) Get(ctx context.Context, key string, dest any) error {
	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		"SELECT value, expires_at FROM kv WHERE key = ?",
		key,
	).Scan(&value, &expiresAt)
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if expired(expiresAt) {
		_ = db.Delete(ctx, key)
		return fmt.Errorf("kv get %q: %w", key, sql.ErrNoRows)
	}

	if err := json.Unmarshal(value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set stores value under key with no expiry.
func (db *DB) Set(ctx context.Context, key string, value any) error {
	return db.set(ctx, key, value, sql.NullInt64{})
}

// SetTTL stores value under key for the given duration.
func (db *DB) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).UnixNano()
	return db.set(ctx, key, value, sql.NullInt64{Int64: expiresAt, Valid: true})
}

func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// DeleteExpired removes every expired entry and returns how many were removed.
func (db *DB) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?",
		time.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("kv sweep: %w", err)
	}
	return res.RowsAffected()
}

func (db *DB) set(ctx context.Context, key string, value any, expiresAt sql.NullInt64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := time.Now().UnixNano()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO kv (key, value, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, key, data, expiresAt, now, now)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func expired(expiresAt sql.NullInt64) bool {
	return expiresAt.Valid && time.Now().UnixNano() >= expiresAt.Int64
}
