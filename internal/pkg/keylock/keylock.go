// Package keylock serializes work per key within one process.
package keylock

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	sem      chan struct{}
	refs     int
	lastUsed time.Time
}

// KeyedMutex is a set of mutexes addressed by string keys. Waiting for a key honors
// context cancellation. Entries stay in memory after use until Sweep drops them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func New() *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Lock blocks until key is free or ctx ends. The returned unlock func is safe to
// call more than once.
//
// Example:
//
//	unlock, err := locks.Lock(ctx, orderID.String())
//	if err != nil {
//	    return err
//	}
//	defer unlock()
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.release(e)
		})
	}, nil
}

func (k *KeyedMutex) release(e *entry) {
	k.mu.Lock()
	e.refs--
	e.lastUsed = k.now()
	k.mu.Unlock()
}

// Sweep drops entries that nobody holds or waits for and that were last used at
// least idle ago. It returns the number of dropped entries.
func (k *KeyedMutex) Sweep(idle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-idle)
	removed := 0
	for key, e := range k.entries {
		if e.refs == 0 && !e.lastUsed.After(cutoff) {
			delete(k.entries, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
