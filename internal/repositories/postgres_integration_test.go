//go:build integration

package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petpalfinder/backend/internal/auth"
	"github.com/petpalfinder/backend/internal/db"
	"github.com/petpalfinder/backend/internal/filters"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	migrator := db.NewMigrator(pool, filepath.Join("..", "..", "migrations"))
	if _, err := migrator.Up(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestMigratorIsIdempotent(t *testing.T) {
	migrator := db.NewMigrator(testPool, filepath.Join("..", "..", "migrations"))

	applied, err := migrator.Up(context.Background())
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing to apply got %v", applied)
	}

	statuses, err := migrator.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Fatalf("migration %s not applied", s.Name)
		}
	}
}

func TestPostgresTokenStore_SaveLoadAndClear(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	store := NewPostgresTokenStore(testPool, "")

	if _, err := store.Load(ctx); !errors.Is(err, auth.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound got %v", err)
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	if err := store.Save(ctx, auth.AccessToken{Value: "first", ExpiresAt: expires}); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := store.Save(ctx, auth.AccessToken{Value: "second", ExpiresAt: expires}); err != nil {
		t.Fatalf("replace token: %v", err)
	}

	token, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token.Value != "second" || !token.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected token %+v", token)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, auth.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound after clear got %v", err)
	}
}

func TestPostgresPrefsStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	store := NewPostgresPrefsStore(testPool)
	profileID := uuid.NewString()

	if _, err := store.Load(ctx, profileID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}

	criteria := filters.Defaults("")
	criteria.Types = []string{"dog", "cat"}
	criteria.Ages = []string{"young"}
	criteria.GoodWithCats = true
	criteria.DistanceKm = 120

	if err := store.Save(ctx, profileID, criteria.ToPrefs()); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	prefs, err := store.Load(ctx, profileID)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	got := filters.FromPrefs(prefs, "")
	if len(got.Types) != 2 || got.DistanceKm != 120 || !got.GoodWithCats || len(got.Ages) != 1 {
		t.Fatalf("unexpected criteria %+v", got)
	}

	criteria.Types = []string{"rabbit"}
	if err := store.Save(ctx, profileID, criteria.ToPrefs()); err != nil {
		t.Fatalf("overwrite prefs: %v", err)
	}
	prefs, err = store.Load(ctx, profileID)
	if err != nil {
		t.Fatalf("reload prefs: %v", err)
	}
	got = filters.FromPrefs(prefs, "")
	if len(got.Types) != 1 || got.Types[0] != "rabbit" {
		t.Fatalf("expected overwrite got %+v", got.Types)
	}
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE oauth_tokens, filter_prefs CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
