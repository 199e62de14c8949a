package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/petpalfinder/backend/internal/auth"
	"github.com/petpalfinder/backend/internal/db"
)

// DefaultTokenName keys the upstream API token row.
const DefaultTokenName = "petfinder"

// PostgresTokenStore persists the cached access token so it survives restarts.
type PostgresTokenStore struct {
	pool db.Pool
	name string
}

// NewPostgresTokenStore constructs a token store backed by PostgreSQL.
func NewPostgresTokenStore(pool db.Pool, name string) *PostgresTokenStore {
	if name == "" {
		name = DefaultTokenName
	}
	return &PostgresTokenStore{pool: pool, name: name}
}

// Load returns the stored token or auth.ErrTokenNotFound.
func (s *PostgresTokenStore) Load(ctx context.Context) (auth.AccessToken, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return auth.AccessToken{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT access_token, expires_at
        FROM oauth_tokens
        WHERE name = $1
    `, s.name)

	var (
		token     auth.AccessToken
		expiresAt time.Time
	)
	if err := row.Scan(&token.Value, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.AccessToken{}, auth.ErrTokenNotFound
		}
		return auth.AccessToken{}, fmt.Errorf("select token: %w", err)
	}

	token.ExpiresAt = expiresAt.UTC()
	return token, nil
}

// Save stores or replaces the token.
func (s *PostgresTokenStore) Save(ctx context.Context, token auth.AccessToken) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO oauth_tokens (name, access_token, expires_at, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (name)
        DO UPDATE SET access_token = EXCLUDED.access_token,
                      expires_at = EXCLUDED.expires_at,
                      updated_at = EXCLUDED.updated_at
    `, s.name, token.Value, token.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}

	return nil
}

// Clear removes the token. Clearing an empty store is not an error.
func (s *PostgresTokenStore) Clear(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM oauth_tokens WHERE name = $1`, s.name); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

var _ auth.TokenStore = (*PostgresTokenStore)(nil)
