// Package lock provides a keyed mutex used to serialize balance-mutating
// commands per account (single logical writer per account).
package lock

import "sync"

// Keyed hands out one mutex per key. Mutexes are never evicted; the key space
// (account IDs) is small relative to process lifetime.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyed creates an empty keyed mutex set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}
