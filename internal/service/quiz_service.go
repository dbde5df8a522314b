package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/corpus"
	"github.com/stemsi/quizgate/internal/model"
	"github.com/stemsi/quizgate/internal/repository"
)

// ScorePublisher receives a record for every graded submission.
type ScorePublisher interface {
	Publish(ctx context.Context, rec *model.ScoreRecord) error
}

// NopPublisher drops score records. Used when the ledger is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *model.ScoreRecord) error { return nil }

// QuizService implements the session protocol: look a session up, create one
// on a miss, and grade submissions against it.
type QuizService struct {
	bank      *corpus.Corpus
	store     *repository.SessionStore
	sampler   *Sampler
	grader    *Grader
	quizSize  int
	publisher ScorePublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewQuizService creates a new QuizService. A nil publisher disables the ledger.
func NewQuizService(
	bank *corpus.Corpus,
	store *repository.SessionStore,
	sampler *Sampler,
	grader *Grader,
	quizSize int,
	publisher ScorePublisher,
	log zerolog.Logger,
) *QuizService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &QuizService{
		bank:      bank,
		store:     store,
		sampler:   sampler,
		grader:    grader,
		quizSize:  quizSize,
		publisher: publisher,
		log:       log.With().Str("component", "quiz_service").Logger(),
		now:       time.Now,
	}
}

// Questions returns the session for sessionID, or draws and registers a new
// one when sessionID is empty or unknown. created reports which happened.
func (s *QuizService) Questions(ctx context.Context, sessionID string) (sess *model.QuizSession, created bool) {
	if existing, ok := s.store.Get(sessionID); ok {
		return existing, false
	}

	prepared := s.sampler.Prepare(s.bank.All(), s.quizSize)
	sess = s.store.Create(prepared)

	s.log.Info().
		Str("session_id", sess.ID).
		Int("questions", len(prepared)).
		Bool("replaced_unknown", sessionID != "").
		Msg("Quiz session created")
	return sess, true
}

// Submit grades answers against the stored session. An unknown session yields
// ErrInvalidSession. Ledger failures are logged and never fail the submission.
func (s *QuizService) Submit(ctx context.Context, sessionID string, answers []model.SubmittedAnswer) (model.GradeResult, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return model.GradeResult{}, ErrInvalidSession
	}

	res, err := s.grader.Grade(sess, answers)
	if err != nil {
		return model.GradeResult{}, err
	}

	evt := s.log.Info()
	if res.Malformed > 0 {
		evt = s.log.Warn().Int("malformed", res.Malformed)
	}
	evt.Str("session_id", sess.ID).
		Int("correct", res.Correct).
		Int("total", res.Total).
		Int("percent", res.Percent).
		Bool("rewarded", res.Reward != "").
		Msg("Quiz submitted and graded")

	rec := &model.ScoreRecord{
		SessionID: sess.ID,
		Correct:   res.Correct,
		Total:     res.Total,
		Percent:   res.Percent,
		Rewarded:  res.Reward != "",
		GradedAt:  s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to queue score")
	}

	return res, nil
}

// Reset forgets a session so the next Questions call draws a new one.
func (s *QuizService) Reset(sessionID string) bool {
	if sessionID == "" {
		return false
	}
	ok := s.store.Delete(sessionID)
	if ok {
		s.log.Info().Str("session_id", sessionID).Msg("Quiz session reset")
	}
	return ok
}

// Stats reports live session count and bank size for health checks.
func (s *QuizService) Stats() (sessions, bankSize int) {
	return s.store.Len(), s.bank.Len()
}
