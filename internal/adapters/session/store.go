// Package session persists the candidate's token pair between runs.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/onboard/internal/domain/model"
)

// Store persists one token pair.
type Store interface {
	// Load returns the persisted pair or ErrNoSession.
	Load(ctx context.Context) (model.TokenPair, error)
	// Save replaces the persisted pair.
	Save(ctx context.Context, tokens model.TokenPair) error
	// Clear removes the persisted pair. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// TokenSource returns the access token held by store, or "" without a
// session. It satisfies the HTTP client's TokenSource.
type TokenSource struct {
	store Store
}

// NewTokenSource wraps store.
func NewTokenSource(store Store) TokenSource {
	return TokenSource{store: store}
}

// Token implements the client's TokenSource.
func (t TokenSource) Token(ctx context.Context) (string, error) {
	pair, err := t.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens model.TokenPair
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(context.Context) (model.TokenPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tokens.Empty() {
		return model.TokenPair{}, ErrNoSession
	}
	return m.tokens, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, tokens model.TokenPair) error {
	if tokens.Empty() {
		return ErrEmptyTokens
	}
	m.mu.Lock()
	m.tokens = tokens
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.tokens = model.TokenPair{}
	m.mu.Unlock()
	return nil
}
