package session

import (
	"context"
	"sync"
	"time"
)

// TokenStore persists the current session token between invocations.
type TokenStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	// Load returns "" when nothing is stored.
	Load(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// MemoryTokenStore lives as long as the process.
type MemoryTokenStore struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Save(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.expires = time.Now().Add(ttl)
	return nil
}

func (m *MemoryTokenStore) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" || time.Now().After(m.expires) {
		return "", nil
	}
	return m.token, nil
}

func (m *MemoryTokenStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expires = time.Time{}
	return nil
}
