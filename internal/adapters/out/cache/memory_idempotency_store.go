package cache

import (
	"context"
	"sync"
	"time"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/ports"
)

type memoryEntry struct {
	orderID   kernel.UUID
	expiresAt time.Time
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// MemoryIdempotencyStore is the single-process fallback used when no Redis address
// is configured. Expired entries are dropped lazily and by Sweep.
type MemoryIdempotencyStore struct {
	mu       sync.Mutex
	locks    map[string]memoryLock
	recorded map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		locks:    make(map[string]memoryLock),
		recorded: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *MemoryIdempotencyStore) WithClock(now func() time.Time) *MemoryIdempotencyStore {
	s.now = now
	return s
}

func (s *MemoryIdempotencyStore) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if held, ok := s.locks[key]; ok && now.Before(held.expiresAt) {
		return "", false, nil
	}
	token := kernel.NewUUID().String()
	s.locks[key] = memoryLock{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release is a no-op when the lock expired and was taken by someone else.
func (s *MemoryIdempotencyStore) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if held, ok := s.locks[key]; ok && held.token == token {
		delete(s.locks, key)
	}
	return nil
}

func (s *MemoryIdempotencyStore) Remember(_ context.Context, key string, orderID kernel.UUID, ttl time.Duration) error {
	s.mu.Lock()
	s.recorded[key] = memoryEntry{orderID: orderID, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdempotencyStore) Recall(_ context.Context, key string) (kernel.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.recorded[key]
	if !ok {
		return kernel.UUID{}, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.recorded, key)
		return kernel.UUID{}, false, nil
	}
	return entry.orderID, true, nil
}

// Sweep removes expired keys and returns how many were dropped.
func (s *MemoryIdempotencyStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, held := range s.locks {
		if !now.Before(held.expiresAt) {
			delete(s.locks, key)
			removed++
		}
	}
	for key, entry := range s.recorded {
		if !now.Before(entry.expiresAt) {
			delete(s.recorded, key)
			removed++
		}
	}
	return removed
}

var _ ports.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
