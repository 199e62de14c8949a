package geocode

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/petpalfinder/backend/internal/models"
)

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedisStore(ctx, RedisConfig{Addr: mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("NewRedisStore error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, ok, err := store.Get(ctx, "Seattle"); err != nil || ok {
		t.Fatalf("expected empty store got ok=%v err=%v", ok, err)
	}

	want := models.Coordinate{Lat: 47.6062, Lng: -122.3321}
	if err := store.Set(ctx, "Seattle", want); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := store.Set(ctx, "Seattle", models.Coordinate{Lat: 1, Lng: 1}); err != nil {
		t.Fatalf("second Set error: %v", err)
	}

	got, ok, err := store.Get(ctx, "Seattle")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("stored entry changed: %+v", got)
	}

	if !mr.Exists("test:Seattle") {
		t.Fatal("expected prefixed key")
	}
	if ttl := mr.TTL("test:Seattle"); ttl != 0 {
		t.Fatalf("expected no expiry got %v", ttl)
	}
}

func TestRedisStoreBacksCache(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedisStore(ctx, RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	base := &stubGeocoder{place: seattle(), ok: true}
	first := NewCache(base, store, nil)
	second := NewCache(base, store, nil)

	if _, ok := first.Geocode(ctx, "Seattle"); !ok {
		t.Fatal("expected lookup")
	}
	if _, ok := second.Geocode(ctx, "Seattle"); !ok {
		t.Fatal("expected shared cached lookup")
	}
	if got := base.calls.Load(); got != 1 {
		t.Fatalf("expected one external call across caches got %d", got)
	}
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), RedisConfig{}); err == nil {
		t.Fatal("expected error without address")
	}
}
