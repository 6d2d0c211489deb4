// Package hitlog persists redirect decisions in a dedicated SQLite
// database for troubleshooting and abuse analysis.
package hitlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hostbounce/hostbounce/pkg/models"
)

// Logger writes and queries redirect decision records.
type Logger struct {
	db            *sql.DB
	retentionDays int
	done          chan struct{}
	wg            sync.WaitGroup
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS hits (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		hostname   TEXT NOT NULL,
		method     TEXT NOT NULL,
		path       TEXT NOT NULL,
		target     TEXT,
		matched    INTEGER NOT NULL,
		user_agent TEXT,
		created_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_hits_host_time ON hits(hostname, created_at)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_hits_created ON hits(created_at)`)
	return err
}

// New opens the hit log database, creates the schema and starts the
// retention loop.
func New(dbPath string, retentionDays int) (*Logger, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open hit log db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate hit log db: %w", err)
	}

	l := &Logger{
		db:            db,
		retentionDays: retentionDays,
		done:          make(chan struct{}),
	}

	l.wg.Add(1)
	go l.retentionLoop()

	return l, nil
}

// Record inserts one hit.
func (l *Logger) Record(ctx context.Context, hit models.Hit) error {
	if l == nil || l.db == nil {
		return nil
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO hits (hostname, method, path, target, matched, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		hit.Hostname, hit.Method, hit.Path, hit.Target, hit.Matched, hit.UserAgent, hit.CreatedAt,
	)
	return err
}

// Recent returns the most recent hits, newest first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]models.Hit, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT hostname, method, path, target, matched, user_agent, created_at
		 FROM hits ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query hits: %w", err)
	}
	defer rows.Close()

	var hits []models.Hit
	for rows.Next() {
		var h models.Hit
		var targetNS, uaNS sql.NullString
		if err := rows.Scan(&h.Hostname, &h.Method, &h.Path, &targetNS, &h.Matched, &uaNS, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hit row: %w", err)
		}
		h.Target = targetNS.String
		h.UserAgent = uaNS.String
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// TopHosts aggregates hits per hostname since the given time, most
// hit first.
func (l *Logger) TopHosts(ctx context.Context, since time.Time, limit int) ([]models.HostStat, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT hostname, count(*) AS hits, sum(matched) AS matched
		 FROM hits WHERE created_at >= ?
		 GROUP BY hostname ORDER BY hits DESC LIMIT ?`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query top hosts: %w", err)
	}
	defer rows.Close()

	var stats []models.HostStat
	for rows.Next() {
		var s models.HostStat
		if err := rows.Scan(&s.Hostname, &s.Hits, &s.Matched); err != nil {
			return nil, fmt.Errorf("scan host stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Cleanup deletes hits older than the retention period.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -l.retentionDays)
	res, err := l.db.ExecContext(ctx, `DELETE FROM hits WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("hit log cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close stops the retention goroutine and closes the database.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.db.Close()
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			_, _ = l.Cleanup(context.Background())
		}
	}
}
