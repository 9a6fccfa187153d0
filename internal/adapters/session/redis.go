package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/onboard/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "onboard:"
	sessionKey       = "session"
	pingTimeout      = 5 * time.Second
)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key prefix; the pair lives at <prefix>session.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires the persisted pair after ttl. Zero keeps it until cleared.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// RedisStore keeps the pair in Redis so several processes share a session.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, opts ...RedisOption) (*RedisStore, error) {
	ro, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(ro)
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, opts...), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the Redis key holding the pair.
func (s *RedisStore) Key() string { return s.prefix + sessionKey }

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (model.TokenPair, error) {
	raw, err := s.client.Get(ctx, s.Key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.TokenPair{}, ErrNoSession
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("load session: %w", err)
	}
	var tokens model.TokenPair
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return model.TokenPair{}, fmt.Errorf("decode session: %w", err)
	}
	if tokens.Empty() {
		return model.TokenPair{}, ErrNoSession
	}
	return tokens, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, tokens model.TokenPair) error {
	if tokens.Empty() {
		return ErrEmptyTokens
	}
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.Key(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.Key()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
