package cache

import (
	"context"
	"sync"
	"time"

	"github.com/propcore/backend/internal/domain/shared"
)

const memorySweepInterval = 5 * time.Minute

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// InMemoryIdempotencyStore holds delivery keys in process memory. It is only
// correct with a single outbox worker; deployments with several replicas use
// the Redis store.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time

	done    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its expiry sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	s.stopped.Add(1)
	go s.sweep(memorySweepInterval)
	return s
}

func (s *InMemoryIdempotencyStore) live(key string, now time.Time) bool {
	until, ok := s.expires[key]
	return ok && now.Before(until)
}

// MarkProcessed claims key for ttl. It returns false when the key is already held.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live(key, now) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// Release forgets key so the delivery can be attempted again
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// IsProcessed reports whether key is currently held
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live(key, time.Now()), nil
}

// Close stops the sweeper. Calling it more than once is a no-op.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.stopped.Wait()
	})
	return nil
}

// Size returns the number of keys held, expired ones included until the next sweep
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expires)
}

func (s *InMemoryIdempotencyStore) sweep(every time.Duration) {
	defer s.stopped.Done()
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-tick.C:
			s.cleanup()
		}
	}
}

// cleanup drops expired keys
func (s *InMemoryIdempotencyStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.expires {
		if !s.live(key, now) {
			delete(s.expires, key)
		}
	}
}
