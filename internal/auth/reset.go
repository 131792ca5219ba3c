package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/wichananm65/storefront-api/internal/database"
)

// ResetRepository stores password reset tokens by hash.
type ResetRepository interface {
	Create(ctx context.Context, tokenHash string, userID int, expiresAt time.Time) error
	// Consume holds the token while apply runs with its owner and marks it
	// used only when apply succeeds. It succeeds at most once per token.
	Consume(ctx context.Context, tokenHash string, now time.Time, apply func(userID int) error) error
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type resetRecord struct {
	userID    int
	expiresAt time.Time
	used      bool
}

type InMemoryResetRepository struct {
	mu      sync.Mutex
	records map[string]*resetRecord
}

func NewInMemoryResetRepository() *InMemoryResetRepository {
	return &InMemoryResetRepository{records: map[string]*resetRecord{}}
}

func (r *InMemoryResetRepository) Create(ctx context.Context, tokenHash string, userID int, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[tokenHash] = &resetRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *InMemoryResetRepository) Consume(ctx context.Context, tokenHash string, now time.Time, apply func(userID int) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[tokenHash]
	if !ok || rec.used || !now.Before(rec.expiresAt) {
		return ErrInvalidResetToken
	}
	if err := apply(rec.userID); err != nil {
		return err
	}
	rec.used = true
	return nil
}

type PostgresResetRepository struct {
	db *sql.DB
}

const (
	insertResetQuery = `
		INSERT INTO password_resets (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	lockResetQuery = `
		SELECT user_id
		FROM password_resets
		WHERE token_hash = $1
			AND used_at IS NULL
			AND expires_at > $2
		FOR UPDATE
	`
	markResetUsedQuery = `
		UPDATE password_resets
		SET used_at = $2
		WHERE token_hash = $1
	`
)

func NewPostgresResetRepository(db *sql.DB) *PostgresResetRepository {
	return &PostgresResetRepository{db: db}
}

func (r *PostgresResetRepository) Create(ctx context.Context, tokenHash string, userID int, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, insertResetQuery, tokenHash, userID, expiresAt); err != nil {
		return errors.Wrap(err, "insert password reset")
	}
	return nil
}

func (r *PostgresResetRepository) Consume(ctx context.Context, tokenHash string, now time.Time, apply func(userID int) error) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var userID int
		if err := tx.QueryRowContext(ctx, lockResetQuery, tokenHash, now).Scan(&userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInvalidResetToken
			}
			return errors.Wrap(err, "lock password reset")
		}
		if err := apply(userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, markResetUsedQuery, tokenHash, now); err != nil {
			return errors.Wrap(err, "consume password reset")
		}
		return nil
	})
}
