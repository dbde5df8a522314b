package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/corpus"
	"github.com/stemsi/quizgate/internal/model"
	"github.com/stemsi/quizgate/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	records []*model.ScoreRecord
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, rec *model.ScoreRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	return p.err
}

func newQuizService(t *testing.T, bankSize, quizSize int, pub ScorePublisher) *QuizService {
	t.Helper()
	store := repository.NewSessionStore(time.Hour, zerolog.Nop())
	return NewQuizService(
		corpus.New(makeBank(bankSize)),
		store,
		NewSampler(),
		NewGrader(90, "FLAG{test}"),
		quizSize,
		pub,
		zerolog.Nop(),
	)
}

func TestQuizServiceQuestionsCreatesThenReuses(t *testing.T) {
	svc := newQuizService(t, 20, 5, nil)
	ctx := context.Background()

	first, created := svc.Questions(ctx, "")
	require.True(t, created)
	require.Len(t, first.Questions, 5)

	again, created := svc.Questions(ctx, first.ID)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.StudentView(), again.StudentView(), "re-fetch must return the identical question set")
}

func TestQuizServiceUnknownSessionGetsFreshOne(t *testing.T) {
	svc := newQuizService(t, 20, 5, nil)

	sess, created := svc.Questions(context.Background(), "stale-cookie")
	assert.True(t, created)
	assert.NotEqual(t, "stale-cookie", sess.ID)
}

func TestQuizServiceEmptyBank(t *testing.T) {
	svc := newQuizService(t, 0, 50, nil)
	ctx := context.Background()

	sess, created := svc.Questions(ctx, "")
	require.True(t, created)
	assert.Empty(t, sess.Questions)

	res, err := svc.Submit(ctx, sess.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Percent)
}

func TestQuizServiceSubmit(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newQuizService(t, 10, 4, pub)
	ctx := context.Background()

	sess, _ := svc.Questions(ctx, "")
	var answers []model.SubmittedAnswer
	for _, q := range sess.Questions {
		id, _ := json.Marshal(q.ID)
		choice, _ := json.Marshal(q.CorrectIndex)
		answers = append(answers, model.SubmittedAnswer{QuestionID: id, Choice: choice})
	}

	res, err := svc.Submit(ctx, sess.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Percent)
	assert.Equal(t, "FLAG{test}", res.Reward)

	// Grading is repeatable and leaves the session untouched.
	again, err := svc.Submit(ctx, sess.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, res, again)

	require.Len(t, pub.records, 2)
	assert.Equal(t, sess.ID, pub.records[0].SessionID)
	assert.Equal(t, 4, pub.records[0].Correct)
	assert.True(t, pub.records[0].Rewarded)
}

func TestQuizServiceSubmitUnknownSession(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newQuizService(t, 10, 4, pub)

	_, err := svc.Submit(context.Background(), "never-issued", nil)
	assert.True(t, errors.Is(err, ErrInvalidSession))
	assert.Empty(t, pub.records)
}

func TestQuizServicePublishFailureDoesNotFailSubmit(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := newQuizService(t, 10, 4, pub)
	ctx := context.Background()

	sess, _ := svc.Questions(ctx, "")
	_, err := svc.Submit(ctx, sess.ID, nil)
	assert.NoError(t, err)
}

func TestQuizServiceReset(t *testing.T) {
	svc := newQuizService(t, 10, 4, nil)
	ctx := context.Background()

	sess, _ := svc.Questions(ctx, "")
	assert.True(t, svc.Reset(sess.ID))
	assert.False(t, svc.Reset(sess.ID))
	assert.False(t, svc.Reset(""))

	_, err := svc.Submit(ctx, sess.ID, nil)
	assert.True(t, errors.Is(err, ErrInvalidSession))

	sessions, bank := svc.Stats()
	assert.Equal(t, 0, sessions)
	assert.Equal(t, 10, bank)
}
