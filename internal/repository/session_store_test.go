package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(ttl time.Duration) (*SessionStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewSessionStore(ttl, zerolog.Nop())
	s.now = clock.Now
	return s, clock
}

func sampleQuestions() []model.PreparedQuestion {
	return []model.PreparedQuestion{
		{ID: "q1", Prompt: "p1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2},
	}
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	sess := s.Create(sampleQuestions())
	require.NotEmpty(t, sess.ID)
	assert.Len(t, sess.ID, 36, "uuid string form")

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, s.Len())
}

func TestSessionStoreGetMiss(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	_, ok := s.Get("")
	assert.False(t, ok)
	_, ok = s.Get("never-issued")
	assert.False(t, ok)
}

func TestSessionStoreRetriesOnCollision(t *testing.T) {
	s, _ := newTestStore(0)
	ids := []string{"dup", "dup", "fresh"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := s.Create(sampleQuestions())
	second := s.Create(sampleQuestions())
	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
	assert.Equal(t, 2, s.Len())
}

func TestSessionStoreIdleExpiry(t *testing.T) {
	s, clock := newTestStore(30 * time.Minute)

	active := s.Create(sampleQuestions())
	idle := s.Create(sampleQuestions())

	clock.Advance(20 * time.Minute)
	_, ok := s.Get(active.ID)
	require.True(t, ok)

	clock.Advance(20 * time.Minute)
	_, ok = s.Get(idle.ID)
	assert.False(t, ok, "idle session must not be served after its TTL")

	assert.Equal(t, 1, s.EvictIdle())
	assert.Equal(t, 1, s.Len())
	_, ok = s.Get(active.ID)
	assert.True(t, ok)
}

func TestSessionStoreNoTTLKeepsSessions(t *testing.T) {
	s, clock := newTestStore(0)
	sess := s.Create(sampleQuestions())

	clock.Advance(365 * 24 * time.Hour)
	assert.Equal(t, 0, s.EvictIdle())
	_, ok := s.Get(sess.ID)
	assert.True(t, ok)
}

func TestSessionStoreDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	sess := s.Create(sampleQuestions())

	assert.True(t, s.Delete(sess.ID))
	assert.False(t, s.Delete(sess.ID))
	_, ok := s.Get(sess.ID)
	assert.False(t, ok)
}

func TestSessionStoreConcurrentCreateGet(t *testing.T) {
	s := NewSessionStore(time.Hour, zerolog.Nop())

	const workers = 32
	ids := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := s.Create(sampleQuestions())
			got, ok := s.Get(sess.ID)
			if ok && len(got.Questions) == 1 {
				ids <- sess.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, workers, s.Len())
}

func TestSessionStoreRunStopsOnCancel(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
