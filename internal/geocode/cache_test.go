package geocode

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petpalfinder/backend/internal/models"
)

type stubGeocoder struct {
	calls   atomic.Int32
	place   Place
	ok      bool
	err     error
	delay   time.Duration
	queries chan string
}

func (s *stubGeocoder) Forward(_ context.Context, query string) (Place, bool, error) {
	s.calls.Add(1)
	if s.queries != nil {
		s.queries <- query
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.place, s.ok, s.err
}

func (s *stubGeocoder) Reverse(context.Context, float64, float64) (Place, bool, error) {
	s.calls.Add(1)
	return s.place, s.ok, s.err
}

func seattle() Place {
	return Place{Coordinate: models.Coordinate{Lat: 47.6062, Lng: -122.3321}, Formatted: "Seattle, WA, USA"}
}

func TestCacheGeocodeHitsOnce(t *testing.T) {
	base := &stubGeocoder{place: seattle(), ok: true, queries: make(chan string, 4)}
	cache := NewCache(base, nil, nil)
	ctx := context.Background()

	coord, ok := cache.Geocode(ctx, "  Seattle, WA ")
	if !ok || coord.Lat != 47.6062 {
		t.Fatalf("unexpected lookup %v %+v", ok, coord)
	}
	if q := <-base.queries; q != "Seattle, WA" {
		t.Fatalf("expected trimmed query got %q", q)
	}

	if _, ok := cache.Geocode(ctx, "Seattle, WA"); !ok {
		t.Fatal("expected cached result")
	}
	if got := base.calls.Load(); got != 1 {
		t.Fatalf("expected one external call got %d", got)
	}
}

func TestCacheGeocodeDoesNotCacheFailures(t *testing.T) {
	base := &stubGeocoder{err: errors.New("unavailable")}
	cache := NewCache(base, nil, nil)
	ctx := context.Background()

	if _, ok := cache.Geocode(ctx, "Portland"); ok {
		t.Fatal("expected failure")
	}

	base.err = nil
	base.place, base.ok = seattle(), true
	if _, ok := cache.Geocode(ctx, "Portland"); !ok {
		t.Fatal("expected retry to succeed")
	}
	if got := base.calls.Load(); got != 2 {
		t.Fatalf("expected failed lookup to be retried, got %d calls", got)
	}
}

func TestCacheGeocodeDoesNotCacheMisses(t *testing.T) {
	base := &stubGeocoder{}
	store := NewMemoryStore()
	cache := NewCache(base, store, nil)

	for i := 0; i < 2; i++ {
		if _, ok := cache.Geocode(context.Background(), "Atlantis"); ok {
			t.Fatal("expected miss")
		}
	}
	if got := base.calls.Load(); got != 2 {
		t.Fatalf("expected 2 calls got %d", got)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store got %d entries", store.Len())
	}
}

func TestCacheGeocodeBlankQuery(t *testing.T) {
	base := &stubGeocoder{place: seattle(), ok: true}
	cache := NewCache(base, nil, nil)

	if _, ok := cache.Geocode(context.Background(), "   "); ok {
		t.Fatal("expected blank query to miss")
	}
	if base.calls.Load() != 0 {
		t.Fatal("expected no external call for blank query")
	}
}

func TestCacheGeocodeDistinctStringsAreSeparateEntries(t *testing.T) {
	base := &stubGeocoder{place: seattle(), ok: true}
	store := NewMemoryStore()
	cache := NewCache(base, store, nil)

	cache.Geocode(context.Background(), "Seattle")
	cache.Geocode(context.Background(), "Seattle, WA")
	if store.Len() != 2 {
		t.Fatalf("expected 2 entries got %d", store.Len())
	}
}

func TestCacheGeocodeConcurrentMissesCollapse(t *testing.T) {
	base := &stubGeocoder{place: seattle(), ok: true, delay: 50 * time.Millisecond}
	cache := NewCache(base, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := cache.Geocode(context.Background(), "Seattle"); !ok {
				t.Error("expected lookup to succeed")
			}
		}()
	}
	wg.Wait()

	if got := base.calls.Load(); got < 1 || got > 2 {
		t.Fatalf("expected concurrent misses to collapse, got %d calls", got)
	}
}

func TestCacheReverse(t *testing.T) {
	base := &stubGeocoder{place: seattle(), ok: true}
	cache := NewCache(base, nil, nil)

	place, ok := cache.Reverse(context.Background(), 47.6, -122.3)
	if !ok || place.Formatted != "Seattle, WA, USA" {
		t.Fatalf("unexpected reverse result %v %+v", ok, place)
	}

	if _, ok := NewCache(nil, nil, nil).Reverse(context.Background(), 0, 0); ok {
		t.Fatal("expected no result without geocoder")
	}
}
