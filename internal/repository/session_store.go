package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/model"
)

// SessionStore is the process-local registry of quiz sessions. It is safe for
// concurrent use; Create and Get are linearizable with respect to each other.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
}

type sessionEntry struct {
	session *model.QuizSession
	// lastSeen is unix nanos, updated under the read lock.
	lastSeen atomicTime
}

// NewSessionStore creates an empty store. Sessions idle for longer than ttl are
// removed by EvictIdle; ttl <= 0 keeps sessions for the process lifetime.
func NewSessionStore(ttl time.Duration, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		log:      log.With().Str("component", "session_store").Logger(),
	}
}

// Create registers questions under a freshly minted identifier and returns the
// new session. The caller must not modify questions afterwards.
func (s *SessionStore) Create(questions []model.PreparedQuestion) *model.QuizSession {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.sessions[id]; !taken {
			break
		}
		id = s.newID()
	}

	sess := &model.QuizSession{ID: id, Questions: questions, CreatedAt: now}
	e := &sessionEntry{session: sess}
	e.lastSeen.Store(now)
	s.sessions[id] = e
	return sess
}

// Get looks a session up and marks it as recently used. A miss is not an error.
func (s *SessionStore) Get(id string) (*model.QuizSession, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := s.now()
	if s.ttl > 0 && now.Sub(e.lastSeen.Load()) > s.ttl {
		return nil, false
	}
	e.lastSeen.Store(now)
	return e.session, true
}

// Delete removes a session. It reports whether the session existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of stored sessions, including idle ones not yet evicted.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle drops every session idle for longer than the TTL and returns how
// many were removed.
func (s *SessionStore) EvictIdle() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.sessions {
		if e.lastSeen.Load().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is cancelled.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info().Dur("ttl", s.ttl).Dur("interval", interval).Msg("Session janitor started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				s.log.Debug().Int("evicted", n).Int("remaining", s.Len()).Msg("Idle sessions evicted")
			}
		}
	}
}
