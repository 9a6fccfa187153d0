package session

import (
	"context"
	"fmt"
	"time"
)

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Settings select and configure a backend.
type Settings struct {
	Backend   string
	File      string
	RedisURL  string
	KeyPrefix string
	TTL       time.Duration
}

// Open builds the store named by s.Backend. The returned close function
// releases backend resources and is never nil.
func Open(ctx context.Context, s Settings) (Store, func() error, error) {
	noop := func() error { return nil }
	switch s.Backend {
	case BackendFile, "":
		return NewFileStore(s.File), noop, nil
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	case BackendRedis:
		rs, err := NewRedisStore(ctx, s.RedisURL, WithKeyPrefix(s.KeyPrefix), WithTTL(s.TTL))
		if err != nil {
			return nil, noop, err
		}
		return rs, rs.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
}
