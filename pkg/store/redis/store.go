// Package redis implements the durable redirect store on Redis, for
// deployments where several redirector instances share one mapping.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/hostbounce/hostbounce/pkg/models"
	"github.com/hostbounce/hostbounce/pkg/store"
)

// Store keeps one Redis string key per hostname, named
// "<prefix>:<hostname>". Values are the raw target URL.
type Store struct {
	client *redis.Client
	prefix string
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces the redirect keys; defaults to "redirects".
	Prefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Prefix == "" {
		opts.Prefix = "redirects"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	return &Store{client: client, prefix: opts.Prefix}, nil
}

func (s *Store) key(hostname string) string {
	return s.prefix + ":" + hostname
}

// Fetch returns the raw target URL for a hostname.
func (s *Store) Fetch(ctx context.Context, hostname string) (string, error) {
	val, err := s.client.Get(ctx, s.key(hostname)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch %q: %w", hostname, err)
	}
	return val, nil
}

// Put inserts or replaces the redirect record for a hostname. Records
// do not expire; Redis holds the authoritative mapping.
func (s *Store) Put(ctx context.Context, hostname, targetURL string) error {
	if err := s.client.Set(ctx, s.key(hostname), targetURL, 0).Err(); err != nil {
		return fmt.Errorf("put %q: %w", hostname, err)
	}
	return nil
}

// Delete removes the redirect record for a hostname.
func (s *Store) Delete(ctx context.Context, hostname string) error {
	if err := s.client.Del(ctx, s.key(hostname)).Err(); err != nil {
		return fmt.Errorf("delete %q: %w", hostname, err)
	}
	return nil
}

// List scans all redirect keys with cursor pagination.
func (s *Store) List(ctx context.Context) ([]models.RedirectEntry, error) {
	var entries []models.RedirectEntry
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan redirects: %w", err)
		}

		for _, key := range keys {
			val, err := s.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				// Deleted between SCAN and GET.
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get %q: %w", key, err)
			}
			entries = append(entries, models.RedirectEntry{
				Hostname:  strings.TrimPrefix(key, s.prefix+":"),
				TargetURL: val,
			})
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return entries, nil
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
