package repository

import "sync"

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lockTable hands out one mutex per key.
// It uses reference counting to garbage collect unused entries.
type lockTable struct {
	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (t *lockTable) acquire(key string) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.locks[key]
	if !exists {
		entry = &lockEntry{}
		t.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (t *lockTable) release(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.locks[key]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(t.locks, key)
	}
}

// with runs fn while holding the lock for key.
func (t *lockTable) with(key string, fn func() error) error {
	entry := t.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		t.release(key)
	}()
	return fn()
}

// size reports the number of live entries.
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
