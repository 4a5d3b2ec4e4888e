package matches

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// countingReader serves a fixed match list and counts window fetches.
type countingReader struct {
	matches []Match
	fetches int
	err     error
}

func (r *countingReader) ListWindow(ctx context.Context, from, to Date) ([]Match, error) {
	r.fetches++
	if r.err != nil {
		return nil, r.err
	}
	return r.matches, nil
}

func newTestCache(t *testing.T, reader windowReader) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(reader, rdb)
}

func window(from, to string) DateRange {
	return DateRange{From: date(from), To: date(to)}
}

func TestEnsureFirstLoadFetches(t *testing.T) {
	reader := &countingReader{matches: []Match{{ID: 1, MatchDate: date("2025-03-10")}}}
	cache := newTestCache(t, reader)

	got, err := cache.Ensure(context.Background(), window("2025-01-01", "2025-06-30"))
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if reader.fetches != 1 {
		t.Errorf("fetches = %d, want 1 on first load", reader.fetches)
	}
	if len(got) != 1 {
		t.Errorf("got %d matches, want 1", len(got))
	}
}

func TestEnsureFetchesOnlyOnBoundaryCrossing(t *testing.T) {
	// Navigating inside the padded window must never refetch; exceeding
	// the cached bounds must fetch exactly once per crossing.
	reader := &countingReader{}
	cache := newTestCache(t, reader)
	ctx := context.Background()

	if _, err := cache.Ensure(ctx, window("2025-01-01", "2025-06-30")); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	// A month of back-and-forth navigation inside the window.
	inside := []DateRange{
		window("2025-02-01", "2025-03-31"),
		window("2025-03-01", "2025-04-30"),
		window("2025-01-01", "2025-06-30"), // exact cached bounds
		window("2025-02-15", "2025-02-21"),
	}
	for _, w := range inside {
		if _, err := cache.Ensure(ctx, w); err != nil {
			t.Fatalf("Ensure(%v): %v", w, err)
		}
	}
	if reader.fetches != 1 {
		t.Errorf("fetches = %d after contained navigation, want 1", reader.fetches)
	}

	// Crossing the boundary fetches once.
	if _, err := cache.Ensure(ctx, window("2025-04-01", "2025-09-30")); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if reader.fetches != 2 {
		t.Errorf("fetches = %d after boundary crossing, want 2", reader.fetches)
	}
}

func TestEnsureRefetchesAfterInvalidate(t *testing.T) {
	reader := &countingReader{}
	cache := newTestCache(t, reader)
	ctx := context.Background()
	w := window("2025-01-01", "2025-06-30")

	if _, err := cache.Ensure(ctx, w); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	cache.Invalidate(ctx)

	// Same window, but the version moved: must refetch.
	if _, err := cache.Ensure(ctx, w); err != nil {
		t.Fatalf("Ensure after invalidate: %v", err)
	}
	if reader.fetches != 2 {
		t.Errorf("fetches = %d, want 2 (invalidation forces refetch)", reader.fetches)
	}

	// And it stays cached again until the next bump.
	if _, err := cache.Ensure(ctx, w); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if reader.fetches != 2 {
		t.Errorf("fetches = %d, want still 2", reader.fetches)
	}
}

func TestEnsureServesStaleOnFetchFailure(t *testing.T) {
	reader := &countingReader{matches: []Match{{ID: 7, MatchDate: date("2025-03-10")}}}
	cache := newTestCache(t, reader)
	ctx := context.Background()

	if _, err := cache.Ensure(ctx, window("2025-01-01", "2025-06-30")); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	// The next, wider fetch fails: the previous cache is served stale.
	reader.err = errors.New("db down")
	got, err := cache.Ensure(ctx, window("2025-01-01", "2025-12-31"))
	if err != nil {
		t.Fatalf("Ensure with stale fallback: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("stale cache = %v, want the previously fetched matches", got)
	}
}

func TestEnsureFailsWithoutCache(t *testing.T) {
	reader := &countingReader{err: errors.New("db down")}
	cache := newTestCache(t, reader)

	if _, err := cache.Ensure(context.Background(), window("2025-01-01", "2025-06-30")); err == nil {
		t.Fatal("expected error when first fetch fails with no cache to fall back on")
	}
}
