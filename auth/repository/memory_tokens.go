package repository

import (
	"context"
	"sync"
	"time"

	authpkg "github.com/mikios34/customer-admin/auth"
)

type expiring struct {
	value string
	until time.Time
}

// MemoryTokenStore is a process-local TokenStore for single instance setups
// running without Redis.
type MemoryTokenStore struct {
	now func() time.Time

	mu      sync.Mutex
	refresh map[string]expiring
	revoked map[string]time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		now:     time.Now,
		refresh: make(map[string]expiring),
		revoked: make(map[string]time.Time),
	}
}

func (s *MemoryTokenStore) SaveRefresh(_ context.Context, jti, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[jti] = expiring{value: userID, until: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) ConsumeRefresh(_ context.Context, jti string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.refresh[jti]
	delete(s.refresh, jti)
	if !ok || !s.now().Before(e.until) {
		return "", authpkg.ErrInvalidToken
	}
	return e.value, nil
}

func (s *MemoryTokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = s.now().Add(ttl)
	return nil
}

func (s *MemoryTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}
