package services

import (
	"sync"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// KeyLock hands out one mutex per (user, source) pair. Entries are
// reference counted and dropped when the last holder unlocks.
type KeyLock struct {
	mu    sync.Mutex
	locks map[domain.SourceKey]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLock creates an empty lock table.
func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[domain.SourceKey]*keyEntry)}
}

// Lock blocks until the pair is free and returns its unlock function.
func (l *KeyLock) Lock(key domain.SourceKey) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &keyEntry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of pairs currently locked or awaited.
func (l *KeyLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
