package session

import "sync"

// keyLocks serializes turns per canvas id. A turn holds the lock across its
// fetch-mutate-persist-render span; a second message for the same canvas
// arriving mid-turn is rejected rather than queued.
type keyLocks struct {
	store sync.Map
}

// acquire takes all keys or none, rolling back already-taken keys on conflict.
func (l *keyLocks) acquire(keys ...string) bool {
	var taken []string
	for _, key := range keys {
		if _, loaded := l.store.LoadOrStore(key, struct{}{}); loaded {
			for _, k := range taken {
				l.store.Delete(k)
			}
			return false
		}
		taken = append(taken, key)
	}
	return true
}

// release drops the given keys. Wrap in defer so a panicking turn still
// unlocks its session.
func (l *keyLocks) release(keys ...string) {
	for _, key := range keys {
		l.store.Delete(key)
	}
}
