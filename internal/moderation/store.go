package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
)

// ErrSessionNotFound is returned when a session expired or never existed.
var ErrSessionNotFound = errors.New("review session not found")

// SessionStore keeps review sessions between interactions.
type SessionStore interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. A zero timeout keeps sessions until deleted.
type MemoryStore struct {
	sessions map[string]Session
	timeout  time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(timeout time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Get implements SessionStore.
func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	if m.timeout > 0 && m.now().Sub(session.UpdatedAt) > m.timeout {
		delete(m.sessions, id)
		return Session{}, ErrSessionNotFound
	}

	return session, nil
}

// Save implements SessionStore.
func (m *MemoryStore) Save(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session

	return nil
}

// Delete implements SessionStore.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)

	return nil
}

// RedisStore keeps sessions in Redis so they survive restarts.
type RedisStore struct {
	client  rueidis.Client
	timeout time.Duration
}

// SessionKeyPrefix namespaces review session keys.
const SessionKeyPrefix = "tickle:review:"

// NewRedisStore creates a Redis-backed session store. A zero timeout stores sessions without expiry.
func NewRedisStore(client rueidis.Client, timeout time.Duration) *RedisStore {
	return &RedisStore{client: client, timeout: timeout}
}

// Get implements SessionStore.
func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	data, err := r.client.Do(ctx, r.client.B().Get().Key(SessionKeyPrefix+id).Build()).AsBytes()
	if rueidis.IsRedisNil(err) {
		return Session{}, ErrSessionNotFound
	}

	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := sonic.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}

	return session, nil
}

// Save implements SessionStore.
func (r *RedisStore) Save(ctx context.Context, session Session) error {
	data, err := sonic.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var cmd rueidis.Completed
	if r.timeout > 0 {
		cmd = r.client.B().Set().Key(SessionKeyPrefix + session.ID).Value(rueidis.BinaryString(data)).Ex(r.timeout).Build()
	} else {
		cmd = r.client.B().Set().Key(SessionKeyPrefix + session.ID).Value(rueidis.BinaryString(data)).Build()
	}

	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete implements SessionStore.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(SessionKeyPrefix+id).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
