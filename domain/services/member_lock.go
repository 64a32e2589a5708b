package services

import (
	"sync"

	"rolekeeper/domain/entities"
)

type memberLockEntry struct {
	mu   sync.Mutex
	refs int
}

// MemberLocker hands out one mutex per (guild, member) pair. Entries are
// reference counted and dropped when the last holder unlocks, so the table
// only grows with the number of members currently being handled.
type MemberLocker struct {
	mu      sync.Mutex
	entries map[entities.MemberKey]*memberLockEntry
}

// NewMemberLocker creates an empty locker
func NewMemberLocker() *MemberLocker {
	return &MemberLocker{
		entries: make(map[entities.MemberKey]*memberLockEntry),
	}
}

// Lock blocks until the caller holds the pair's lock and returns the matching unlock
func (l *MemberLocker) Lock(key entities.MemberKey) func() {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &memberLockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns how many pairs currently have holders or waiters
func (l *MemberLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
