package hitlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hostbounce/hostbounce/pkg/models"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := New(filepath.Join(t.TempDir(), "hits_test.db"), 30)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := newTestLogger(t)
	ctx := context.Background()

	err := l.Record(ctx, models.Hit{
		Hostname:  "old.example.com",
		Method:    "GET",
		Path:      "/some/path",
		Target:    "https://new.example.com/some/path",
		Matched:   true,
		UserAgent: "curl/8.0",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	h := hits[0]
	if h.Hostname != "old.example.com" || !h.Matched {
		t.Errorf("unexpected hit: %+v", h)
	}
	if h.Target != "https://new.example.com/some/path" {
		t.Errorf("unexpected target: %q", h.Target)
	}
	if h.UserAgent != "curl/8.0" {
		t.Errorf("unexpected user agent: %q", h.UserAgent)
	}
}

func TestTopHosts(t *testing.T) {
	l := newTestLogger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		_ = l.Record(ctx, models.Hit{Hostname: "busy.example.com", Method: "GET", Path: "/", Matched: true, CreatedAt: now})
	}
	_ = l.Record(ctx, models.Hit{Hostname: "ghost.example.com", Method: "GET", Path: "/", Matched: false, CreatedAt: now})
	// Outside the window.
	_ = l.Record(ctx, models.Hit{Hostname: "stale.example.com", Method: "GET", Path: "/", Matched: true, CreatedAt: now.Add(-48 * time.Hour)})

	stats, err := l.TopHosts(ctx, now.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(stats))
	}
	if stats[0].Hostname != "busy.example.com" || stats[0].Hits != 3 || stats[0].Matched != 3 {
		t.Errorf("unexpected top host: %+v", stats[0])
	}
	if stats[1].Hostname != "ghost.example.com" || stats[1].Matched != 0 {
		t.Errorf("unexpected second host: %+v", stats[1])
	}
}

func TestCleanup(t *testing.T) {
	l := newTestLogger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = l.Record(ctx, models.Hit{Hostname: "old.example.com", Method: "GET", Path: "/", Matched: true, CreatedAt: now.AddDate(0, 0, -60)})
	_ = l.Record(ctx, models.Hit{Hostname: "old.example.com", Method: "GET", Path: "/", Matched: true, CreatedAt: now})

	removed, err := l.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Cleanup removed %d, want 1", removed)
	}

	hits, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit after cleanup, got %d", len(hits))
	}
}
