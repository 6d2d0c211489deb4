// Package sqlite implements the durable redirect store on a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hostbounce/hostbounce/pkg/models"
	"github.com/hostbounce/hostbounce/pkg/store"
)

// Store holds redirect rows in a single SQLite table, one row per
// hostname.
type Store struct {
	db    *sql.DB
	table string
}

// Table names are interpolated into SQL, so they are restricted to
// plain identifiers.
var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// New opens the database at dbPath and creates the redirect table if
// it does not exist.
func New(dbPath, table string) (*Store, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		hostname   TEXT PRIMARY KEY,
		target_url TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, table)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store db: %w", err)
	}

	return &Store{db: db, table: table}, nil
}

// Fetch returns the raw target URL for a hostname.
func (s *Store) Fetch(ctx context.Context, hostname string) (string, error) {
	var targetURL string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT target_url FROM %s WHERE hostname = ?`, s.table),
		hostname,
	).Scan(&targetURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch %q: %w", hostname, err)
	}
	return targetURL, nil
}

// Put inserts or replaces the redirect row for a hostname.
func (s *Store) Put(ctx context.Context, hostname, targetURL string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (hostname, target_url, updated_at) VALUES (?, ?, ?)`, s.table),
		hostname, targetURL, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", hostname, err)
	}
	return nil
}

// Delete removes the redirect row for a hostname.
func (s *Store) Delete(ctx context.Context, hostname string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE hostname = ?`, s.table),
		hostname,
	)
	if err != nil {
		return fmt.Errorf("delete %q: %w", hostname, err)
	}
	return nil
}

// List returns all redirect rows ordered by hostname.
func (s *Store) List(ctx context.Context) ([]models.RedirectEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT hostname, target_url, updated_at FROM %s ORDER BY hostname`, s.table))
	if err != nil {
		return nil, fmt.Errorf("list redirects: %w", err)
	}
	defer rows.Close()

	var entries []models.RedirectEntry
	for rows.Next() {
		var e models.RedirectEntry
		if err := rows.Scan(&e.Hostname, &e.TargetURL, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan redirect row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
