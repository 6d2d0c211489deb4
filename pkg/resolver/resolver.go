// Package resolver turns an inbound hostname/path/query into a
// redirect decision, consulting the cache first and the durable store
// on miss. Every failure degrades to "no redirect": a store outage or
// a malformed row must never surface as an error to the client.
package resolver

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/hostbounce/hostbounce/pkg/cache"
	"github.com/hostbounce/hostbounce/pkg/models"
	"github.com/hostbounce/hostbounce/pkg/store"
	"github.com/hostbounce/hostbounce/pkg/target"
)

// Resolver resolves redirect decisions for inbound requests.
type Resolver struct {
	store store.Store
	cache *cache.Cache
}

// New creates a Resolver over the given store and cache.
func New(s store.Store, c *cache.Cache) *Resolver {
	return &Resolver{store: s, cache: c}
}

// Resolve returns the redirect decision for one request. The hostname
// is canonicalized before lookup, so OLD.example.com and
// old.example.com share one cache entry and one store key.
func (r *Resolver) Resolve(ctx context.Context, hostname, path, rawQuery string) models.Decision {
	host, err := target.NormalizeHost(hostname)
	if err != nil {
		return models.NoMatch
	}

	if entry, ok := r.cache.Get(host); ok {
		if entry.Negative {
			return models.NoMatch
		}
		return models.Decision{Matched: true, Location: compose(entry.Target, path, rawQuery)}
	}

	raw, err := r.store.Fetch(ctx, host)
	if errors.Is(err, store.ErrNotFound) {
		r.cache.PutNegative(host)
		return models.NoMatch
	}
	if err != nil {
		// Transient store failure: fail open and do not cache, so the
		// outage is not remembered as a permanent absence.
		log.Printf("resolver: lookup for %s failed: %v", host, err)
		return models.NoMatch
	}

	base, err := target.Normalize(raw)
	if err != nil {
		// Bad row. Not cached either way: the row may be fixed at any
		// moment, and a broken target must not become an open redirect.
		log.Printf("resolver: invalid target for %s: %v", host, err)
		return models.NoMatch
	}

	r.cache.PutPositive(host, base)
	return models.Decision{Matched: true, Location: compose(base, path, rawQuery)}
}

// compose joins the validated base URL with the request's path and
// query. Exactly one separator joins the base path and request path;
// an empty request path yields the base with a trailing slash. The
// request query is appended with "?", or merged with "&" when the base
// already carries one.
func compose(base *url.URL, path, rawQuery string) string {
	u := *base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")

	if rawQuery != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&" + rawQuery
		} else {
			u.RawQuery = rawQuery
		}
	}
	return u.String()
}
