// Package cache holds the in-process caches used for derived reports.
package cache

import (
	"context"
	"log/slog"
	"time"

	"budget/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

type statser interface {
	Stats() Stats
}

// Manager periodically evicts expired entries from registered caches.
type Manager struct {
	caches []Cleaner
	done   chan struct{}
	cancel context.CancelFunc
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a cache to the manager for cleanup. Call before Start.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// Start begins periodic cleanup until ctx is done or Stop is called.
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.cleanup(ctx, interval)
}

func (m *Manager) cleanup(ctx context.Context, interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				slog.DebugContext(ctx, "Expired cache entries removed", log.FieldComponent, log.ComponentCache, log.FieldCount, n)
			}
			st := m.Stats()
			slog.DebugContext(ctx, "Cache usage",
				log.FieldComponent, log.ComponentCache,
				"size", st.Size,
				"hits", st.Hits,
				"misses", st.Misses)
		case <-ctx.Done():
			return
		}
	}
}

// CleanAll runs one cleanup pass and returns the number of removed entries.
func (m *Manager) CleanAll() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stats sums the usage of the registered caches that report it.
func (m *Manager) Stats() Stats {
	var total Stats
	for _, c := range m.caches {
		if sc, ok := c.(statser); ok {
			st := sc.Stats()
			total.Size += st.Size
			total.Hits += st.Hits
			total.Misses += st.Misses
		}
	}
	return total
}

// Stop ends the cleanup loop and waits for it to exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}
