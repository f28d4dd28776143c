// Package keylock provides mutual exclusion per string key.
package keylock

import (
	"slices"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per key. Entries are dropped once no goroutine
// holds or waits for them, so the map stays as small as the set of busy keys.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (l *Locker) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// LockAll locks every distinct key in sorted order and returns one func that
// releases them all. Sorting keeps two callers with overlapping keys from
// deadlocking.
func (l *Locker) LockAll(keys ...string) func() {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	unlocks := make([]func(), 0, len(sorted))
	for _, k := range sorted {
		unlocks = append(unlocks, l.Lock(k))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
