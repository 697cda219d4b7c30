package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a wizard session id is unknown
// or has expired.
var ErrSessionNotFound = errors.New("wizard session not found")

// DefaultSessionTTL is how long an idle wizard session survives.
const DefaultSessionTTL = 30 * time.Minute

// SessionState is the serialisable part of a wizard session.  The
// lookup tables and the duplicate guard are reattached on load.
type SessionState struct {
	Form       Form `json:"form"`
	Step       int  `json:"step"`
	DupFlagged bool `json:"dup_flagged"`
}

// SessionStore persists wizard sessions between HTTP requests.
type SessionStore interface {
	// Create allocates a fresh session and returns its id.
	Create(ctx context.Context) (string, error)
	// Get returns the state stored under id, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (SessionState, error)
	// Save overwrites the state stored under id and refreshes its TTL.
	Save(ctx context.Context, id string, st SessionState) error
	// Delete removes the session.  Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}

// redisSessionStore keeps sessions in Redis so a wizard survives a
// server restart and works behind multiple instances.
type redisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s *redisSessionStore) key(id string) string { return "wizard:" + id }

func (s *redisSessionStore) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.Save(ctx, id, SessionState{}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (SessionState, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionState{}, ErrSessionNotFound
	}
	if err != nil {
		return SessionState{}, err
	}
	var st SessionState
	if err := json.Unmarshal(raw, &st); err != nil {
		return SessionState{}, err
	}
	return st, nil
}

func (s *redisSessionStore) Save(ctx context.Context, id string, st SessionState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(id), raw, s.ttl).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}

// memorySessionStore is the single-process fallback used when Redis is
// not configured.  Entries expire lazily on access.
type memorySessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]memorySession
}

type memorySession struct {
	state   SessionState
	expires time.Time
}

func (s *memorySessionStore) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	return id, s.Save(ctx, id, SessionState{})
}

func (s *memorySessionStore) Get(_ context.Context, id string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok || time.Now().After(e.expires) {
		delete(s.data, id)
		return SessionState{}, ErrSessionNotFound
	}
	return e.state, nil
}

func (s *memorySessionStore) Save(_ context.Context, id string, st SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = memorySession{state: st, expires: time.Now().Add(s.ttl)}
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// NewSessionStore returns a Redis-backed store when rdb is non-nil and
// an in-memory store otherwise.  A non-positive ttl falls back to
// DefaultSessionTTL.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if rdb != nil {
		return &redisSessionStore{rdb: rdb, ttl: ttl}
	}
	return &memorySessionStore{ttl: ttl, data: make(map[string]memorySession)}
}
