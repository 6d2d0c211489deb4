// Package store defines the durable lookup client: the authoritative
// hostname → target mapping lives outside the process, one record per
// hostname.
package store

import (
	"context"
	"errors"

	"github.com/hostbounce/hostbounce/pkg/models"
)

// ErrNotFound is returned by Fetch when no record exists for the
// hostname. Any other error from Fetch is treated as transient by
// callers and must not be cached.
var ErrNotFound = errors.New("redirect not found")

// Store is the durable hostname → raw target mapping. Fetch is the
// only operation on the request path; the rest serve the admin CLI.
type Store interface {
	// Fetch returns the raw (possibly schemeless) target URL stored
	// for the hostname, or ErrNotFound.
	Fetch(ctx context.Context, hostname string) (string, error)
	// Put inserts or replaces the record for the hostname.
	Put(ctx context.Context, hostname, targetURL string) error
	// Delete removes the record for the hostname, if any.
	Delete(ctx context.Context, hostname string) error
	// List returns all stored records.
	List(ctx context.Context) ([]models.RedirectEntry, error)
	// Close releases the underlying connection.
	Close() error
}
