package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fundlane/fundlane/pkg"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Identity is the typed authenticated-identity value handlers consume. It is
// produced by the Authenticate middleware; handlers never parse tokens.
type Identity struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Role   pkg.Role  `json:"role"`
}

// SessionStore resolves a bearer token into an Identity. Session issuance is
// owned by the external auth provider; this side only reads.
type SessionStore interface {
	Fetch(ctx context.Context, token string) (Identity, error)
}

func sessionKey(token string) string {
	return "session:" + token
}

// RedisSessionStore reads sessions the auth provider writes into Redis as
// JSON under session:<token>.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Fetch(ctx context.Context, token string) (Identity, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Identity{}, ErrSessionNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// MemorySessionStore is the test double; Seed registers tokens directly.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Identity
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Identity)}
}

func (s *MemorySessionStore) Seed(token string, id Identity) {
	s.mu.Lock()
	s.sessions[token] = id
	s.mu.Unlock()
}

func (s *MemorySessionStore) Fetch(ctx context.Context, token string) (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[token]
	if !ok {
		return Identity{}, ErrSessionNotFound
	}
	return id, nil
}
