package auth

import (
	"sync"
	"time"
)

// RevocationList is the logout denylist. Entries are keyed by token id and
// kept until the token would have expired anyway.
type RevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Revoke denies the token id until expiresAt
func (l *RevocationList) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	l.mu.Lock()
	l.entries[jti] = expiresAt
	l.mu.Unlock()
}

// IsRevoked reports whether the token id was logged out
func (l *RevocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	_, ok := l.entries[jti]
	l.mu.RUnlock()
	return ok
}

// Prune drops entries whose tokens expired before now and returns how many went
func (l *RevocationList) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for jti, exp := range l.entries {
		if exp.Before(now) {
			delete(l.entries, jti)
			removed++
		}
	}
	return removed
}

// Len returns the number of revoked tokens still tracked
func (l *RevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
