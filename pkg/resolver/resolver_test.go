package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hostbounce/hostbounce/pkg/cache"
	"github.com/hostbounce/hostbounce/pkg/models"
	"github.com/hostbounce/hostbounce/pkg/store"
)

// fakeStore serves redirect rows from a map and counts fetches.
type fakeStore struct {
	rows    map[string]string
	err     error
	fetches atomic.Int64
}

func (f *fakeStore) Fetch(ctx context.Context, hostname string) (string, error) {
	f.fetches.Add(1)
	if f.err != nil {
		return "", f.err
	}
	raw, ok := f.rows[hostname]
	if !ok {
		return "", store.ErrNotFound
	}
	return raw, nil
}

func (f *fakeStore) Put(ctx context.Context, hostname, targetURL string) error { return nil }
func (f *fakeStore) Delete(ctx context.Context, hostname string) error        { return nil }
func (f *fakeStore) List(ctx context.Context) ([]models.RedirectEntry, error) { return nil, nil }
func (f *fakeStore) Close() error                                             { return nil }

func newTestResolver(rows map[string]string) (*Resolver, *fakeStore) {
	fs := &fakeStore{rows: rows}
	return New(fs, cache.New(5*time.Minute)), fs
}

func TestResolveSchemelessTarget(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"old.example.com": "new.example.com"})

	d := r.Resolve(context.Background(), "old.example.com", "/some/path", "q=1")
	if !d.Matched {
		t.Fatal("expected redirect")
	}
	if d.Location != "https://new.example.com/some/path?q=1" {
		t.Errorf("Location = %q, want %q", d.Location, "https://new.example.com/some/path?q=1")
	}
}

func TestResolveEmptyPathNoQuery(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"old.example.com": "https://new.example.com"})

	d := r.Resolve(context.Background(), "old.example.com", "", "")
	if !d.Matched {
		t.Fatal("expected redirect")
	}
	if d.Location != "https://new.example.com/" {
		t.Errorf("Location = %q, want %q", d.Location, "https://new.example.com/")
	}
}

func TestResolveBaseWithPathAndQuery(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"old.example.com": "https://new.example.com/app/?src=legacy",
	})

	d := r.Resolve(context.Background(), "old.example.com", "/reports", "year=2024")
	if !d.Matched {
		t.Fatal("expected redirect")
	}
	want := "https://new.example.com/app/reports?src=legacy&year=2024"
	if d.Location != want {
		t.Errorf("Location = %q, want %q", d.Location, want)
	}
}

func TestResolveCachesPositive(t *testing.T) {
	r, fs := newTestResolver(map[string]string{"old.example.com": "new.example.com"})
	ctx := context.Background()

	first := r.Resolve(ctx, "old.example.com", "/a", "")
	second := r.Resolve(ctx, "old.example.com", "/a", "")

	if first != second {
		t.Errorf("repeated resolve differed: %+v vs %+v", first, second)
	}
	if n := fs.fetches.Load(); n != 1 {
		t.Errorf("store fetched %d times, want 1", n)
	}
}

func TestResolveCachesNegative(t *testing.T) {
	r, fs := newTestResolver(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if d := r.Resolve(ctx, "ghost.example.com", "/", ""); d.Matched {
			t.Fatal("expected NoMatch for unknown hostname")
		}
	}
	if n := fs.fetches.Load(); n != 1 {
		t.Errorf("store fetched %d times, want 1", n)
	}
}

func TestResolveTransientErrorNotCached(t *testing.T) {
	r, fs := newTestResolver(nil)
	fs.err = errors.New("connection refused")
	ctx := context.Background()

	if d := r.Resolve(ctx, "old.example.com", "/", ""); d.Matched {
		t.Fatal("expected NoMatch during store outage")
	}

	// Store recovers; next resolve retries instead of serving a cached
	// absence.
	fs.err = nil
	fs.rows = map[string]string{"old.example.com": "new.example.com"}
	d := r.Resolve(ctx, "old.example.com", "/x", "")
	if !d.Matched {
		t.Fatal("expected redirect after store recovery")
	}
	if n := fs.fetches.Load(); n != 2 {
		t.Errorf("store fetched %d times, want 2", n)
	}
}

func TestResolveInvalidStoredTarget(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty value", raw: ""},
		{name: "garbage", raw: "https://exa mple.com"},
		{name: "bad scheme", raw: "ftp://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fs := newTestResolver(map[string]string{"old.example.com": tt.raw})
			ctx := context.Background()

			if d := r.Resolve(ctx, "old.example.com", "/", ""); d.Matched {
				t.Fatal("malformed stored value must not redirect")
			}

			// Invalid rows are not cached: the row may be fixed at any time.
			r.Resolve(ctx, "old.example.com", "/", "")
			if n := fs.fetches.Load(); n != 2 {
				t.Errorf("store fetched %d times, want 2", n)
			}
		})
	}
}

func TestResolveCaseInsensitiveHost(t *testing.T) {
	r, fs := newTestResolver(map[string]string{"old.example.com": "new.example.com"})
	ctx := context.Background()

	d1 := r.Resolve(ctx, "OLD.example.com", "/p", "")
	d2 := r.Resolve(ctx, "old.example.com", "/p", "")

	if !d1.Matched || !d2.Matched {
		t.Fatal("expected redirect for both casings")
	}
	if d1.Location != d2.Location {
		t.Errorf("locations differ: %q vs %q", d1.Location, d2.Location)
	}
	if n := fs.fetches.Load(); n != 1 {
		t.Errorf("store fetched %d times, want 1; casings must share one cache entry", n)
	}
}

func TestResolveHostWithPort(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"old.example.com": "new.example.com"})

	d := r.Resolve(context.Background(), "old.example.com:8080", "/p", "")
	if !d.Matched {
		t.Fatal("expected redirect with port on inbound host")
	}
}

func TestResolveEmptyHostname(t *testing.T) {
	r, fs := newTestResolver(map[string]string{"old.example.com": "new.example.com"})

	if d := r.Resolve(context.Background(), "", "/p", ""); d.Matched {
		t.Fatal("expected NoMatch for empty hostname")
	}
	if n := fs.fetches.Load(); n != 0 {
		t.Errorf("store fetched %d times, want 0", n)
	}
}
