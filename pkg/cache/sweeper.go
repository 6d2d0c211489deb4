package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically evicts expired entries. Lookups already treat
// expired entries as absent, so the sweep only reclaims memory from
// hostnames that stopped receiving traffic.
type Sweeper struct {
	cron  *cron.Cron
	cache *Cache
}

// NewSweeper schedules a sweep of the cache every interval.
func NewSweeper(c *Cache, interval time.Duration) (*Sweeper, error) {
	cr := cron.New()
	_, err := cr.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if removed := c.Sweep(); removed > 0 {
			log.Printf("cache: swept %d expired entries", removed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule cache sweep: %w", err)
	}
	return &Sweeper{cron: cr, cache: c}, nil
}

// Run starts the sweep schedule and blocks until the context is
// canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	return nil
}
