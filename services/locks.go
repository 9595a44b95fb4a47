package services

import "sync"

type playerKey struct {
	GuildID int64
	UserID  int64
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// PlayerLocks serializes every mutation of one player record while letting
// distinct players proceed in parallel. Entries are reference-counted and
// dropped once the last holder releases, so the map does not grow with the
// total player population.
type PlayerLocks struct {
	mu    sync.Mutex
	locks map[playerKey]*lockEntry
}

func NewPlayerLocks() *PlayerLocks {
	return &PlayerLocks{locks: make(map[playerKey]*lockEntry)}
}

// Lock acquires the per-player lock and returns the matching unlock func.
func (l *PlayerLocks) Lock(guildID, userID int64) func() {
	key := playerKey{GuildID: guildID, UserID: userID}

	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
