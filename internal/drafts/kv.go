package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is a session-scoped string slot store. Implementations must keep one
// session's keys invisible to every other session.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps per-session maps in process memory. It is the default
// backend and needs no server-side persistence.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]string)}
}

// Session returns the KV for one browser tab/session.
func (m *MemoryStore) Session(id string) KV {
	return &memorySession{store: m, id: id}
}

// End drops everything a session stored.
func (m *MemoryStore) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

type memorySession struct {
	store *MemoryStore
	id    string
}

func (s *memorySession) Get(_ context.Context, key string) (string, bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	v, ok := s.store.sessions[s.id][key]
	return v, ok, nil
}

func (s *memorySession) Set(_ context.Context, key, value string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	slots, ok := s.store.sessions[s.id]
	if !ok {
		slots = make(map[string]string)
		s.store.sessions[s.id] = slots
	}
	slots[key] = value
	return nil
}

func (s *memorySession) Delete(_ context.Context, key string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.sessions[s.id], key)
	return nil
}

// DefaultSessionTTL bounds how long an abandoned detour survives in Redis.
const DefaultSessionTTL = 30 * time.Minute

// RedisStore namespaces slots per session and expires them, for wizards
// hosted behind a server that cannot keep state in the browser.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps a go-redis client. A non-positive ttl uses DefaultSessionTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("drafts: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Session returns the KV for one session id.
func (r *RedisStore) Session(id string) KV {
	return &redisSession{store: r, id: strings.TrimSpace(id)}
}

type redisSession struct {
	store *RedisStore
	id    string
}

func (s *redisSession) key(k string) string {
	return fmt.Sprintf("session:%s:%s", s.id, k)
}

func (s *redisSession) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.store.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("drafts: redis get: %w", err)
	}
	return v, true, nil
}

func (s *redisSession) Set(ctx context.Context, key, value string) error {
	if err := s.store.client.Set(ctx, s.key(key), value, s.store.ttl).Err(); err != nil {
		return fmt.Errorf("drafts: redis set: %w", err)
	}
	return nil
}

func (s *redisSession) Delete(ctx context.Context, key string) error {
	if err := s.store.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("drafts: redis del: %w", err)
	}
	return nil
}
