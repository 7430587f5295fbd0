package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationList is an in-memory implementation of auth.RevocationList.
type RevocationList struct {
	clock func() time.Time

	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{
		clock:   time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (l *RevocationList) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	l.mu.Lock()
	l.revoked[tokenID] = l.clock().Add(ttl)
	l.mu.Unlock()
	return nil
}

func (l *RevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	until, ok := l.revoked[tokenID]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !until.After(l.clock()) {
		l.mu.Lock()
		delete(l.revoked, tokenID)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
