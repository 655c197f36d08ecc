// Package credential persists bearer tokens between runs. It plays the role
// of browser local storage for the dashboard server and the CLI.
package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultKey is the fixed key the token is stored under.
const DefaultKey = "token"

// Store is a small string key/value store. Get returns "" with a nil error
// when the key is absent. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by stores backed by a server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionKey returns the key for a browser session's token.
func SessionKey(sid string) string {
	return DefaultKey + ":" + sid
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("credential key is required")
	}
	return nil
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Keyed binds a Store to one key. It is the token source of an API client
// and the persistence of a session.
type Keyed struct {
	store Store
	key   string
}

// NewKeyed binds store to key.
func NewKeyed(store Store, key string) *Keyed {
	return &Keyed{store: store, key: key}
}

// Key returns the bound key.
func (k *Keyed) Key() string { return k.key }

// Token returns the persisted token, or "" when none is held.
func (k *Keyed) Token(ctx context.Context) (string, error) {
	v, err := k.store.Get(ctx, k.key)
	if err != nil {
		return "", fmt.Errorf("read credential %s: %w", k.key, err)
	}
	return v, nil
}

// Save persists token.
func (k *Keyed) Save(ctx context.Context, token string) error {
	if err := k.store.Set(ctx, k.key, token); err != nil {
		return fmt.Errorf("write credential %s: %w", k.key, err)
	}
	return nil
}

// Clear removes the persisted token.
func (k *Keyed) Clear(ctx context.Context) error {
	if err := k.store.Delete(ctx, k.key); err != nil {
		return fmt.Errorf("delete credential %s: %w", k.key, err)
	}
	return nil
}
