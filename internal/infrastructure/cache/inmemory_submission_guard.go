package cache

import (
	"context"
	"sync"
	"time"
)

// InMemorySubmissionGuard is a process-local guard for single-instance
// deployments and tests. Held keys expire after their TTL even without an
// explicit Release.
type InMemorySubmissionGuard struct {
	mu      sync.Mutex
	held    map[string]time.Time
	stop    chan struct{}
	wg      sync.WaitGroup
	stopped sync.Once
}

// NewInMemorySubmissionGuard creates a guard and starts its expiry loop.
func NewInMemorySubmissionGuard() *InMemorySubmissionGuard {
	g := &InMemorySubmissionGuard{
		held: make(map[string]time.Time),
		stop: make(chan struct{}),
	}
	g.wg.Add(1)
	go g.cleanupLoop()
	return g
}

func (g *InMemorySubmissionGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	g.mu.Lock()
	defer g.mu.Unlock()

	if expiresAt, ok := g.held[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	g.held[key] = now.Add(ttl)
	return true, nil
}

func (g *InMemorySubmissionGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

// Close stops the expiry loop. Safe to call more than once.
func (g *InMemorySubmissionGuard) Close() error {
	g.stopped.Do(func() {
		close(g.stop)
	})
	g.wg.Wait()
	return nil
}

func (g *InMemorySubmissionGuard) cleanupLoop() {
	defer g.wg.Done()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case now := <-ticker.C:
			g.mu.Lock()
			for key, expiresAt := range g.held {
				if now.After(expiresAt) {
					delete(g.held, key)
				}
			}
			g.mu.Unlock()
		}
	}
}
