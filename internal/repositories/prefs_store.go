package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/petpalfinder/backend/internal/db"
)

// PrefsStore persists the flat filter preference map of a profile.
type PrefsStore interface {
	Load(ctx context.Context, profileID string) (map[string]string, error)
	Save(ctx context.Context, profileID string, prefs map[string]string) error
}

// PostgresPrefsStore keeps one row per (profile, key).
type PostgresPrefsStore struct {
	pool db.Pool
}

// NewPostgresPrefsStore constructs a prefs store backed by PostgreSQL.
func NewPostgresPrefsStore(pool db.Pool) *PostgresPrefsStore {
	return &PostgresPrefsStore{pool: pool}
}

// Load returns every stored key for profileID, or ErrNotFound when the profile
// has never saved preferences.
func (s *PostgresPrefsStore) Load(ctx context.Context, profileID string) (map[string]string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT pref_key, pref_value
        FROM filter_prefs
        WHERE profile_id = $1
    `, profileID)
	if err != nil {
		return nil, fmt.Errorf("query filter prefs: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan filter pref: %w", err)
		}
		prefs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filter prefs: %w", err)
	}

	if len(prefs) == 0 {
		return nil, ErrNotFound
	}
	return prefs, nil
}

// Save replaces the profile's preferences with prefs in one transaction.
func (s *PostgresPrefsStore) Save(ctx context.Context, profileID string, prefs map[string]string) error {
	if strings.TrimSpace(profileID) == "" {
		return fmt.Errorf("save filter prefs: profile id required")
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin filter prefs transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM filter_prefs WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("delete filter prefs: %w", err)
	}

	batch := &pgx.Batch{}
	for key, value := range prefs {
		batch.Queue(`
            INSERT INTO filter_prefs (profile_id, pref_key, pref_value, updated_at)
            VALUES ($1, $2, $3, NOW())
        `, profileID, key, value)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert filter prefs: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit filter prefs: %w", err)
	}
	return nil
}

var _ PrefsStore = (*PostgresPrefsStore)(nil)
