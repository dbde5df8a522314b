package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/model"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScoreSource yields queued score records. *ScoreQueue implements it.
type ScoreSource interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Requeue(ctx context.Context, rec *model.ScoreRecord) error
}

// ScoreSink persists score records. *repository.ResultRepository implements it.
type ScoreSink interface {
	BulkInsert(ctx context.Context, batch []*model.ScoreRecord) error
	Insert(ctx context.Context, rec *model.ScoreRecord) error
}

// ScoringWorker drains the score queue into the ledger in batches.
type ScoringWorker struct {
	source ScoreSource
	sink   ScoreSink
	log    zerolog.Logger
}

func NewScoringWorker(source ScoreSource, sink ScoreSink, log zerolog.Logger) *ScoringWorker {
	return &ScoringWorker{
		source: source,
		sink:   sink,
		log:    log.With().Str("component", "scoring_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled, then flushes what it holds.
func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoringWorker started")

	batch := make([]*model.ScoreRecord, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			raw, err := w.source.Pop(ctx, ScorePollTimeout)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if raw == nil {
				continue
			}

			var rec model.ScoreRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-record fallback
// ----------------------------------------------------------------

func (w *ScoringWorker) flushSafe(ctx context.Context, batch []*model.ScoreRecord) {
	if len(batch) == 0 {
		return
	}

	if err := w.sink.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("batch", len(batch)).Msg("bulk score insert failed, using fallback")

		for _, rec := range batch {
			if err := w.sink.Insert(ctx, rec); err != nil {
				w.log.Error().Err(err).Str("session_id", rec.SessionID).Msg("single insert failed, requeueing")
				if err := w.source.Requeue(ctx, rec); err != nil {
					w.log.Error().Err(err).Str("session_id", rec.SessionID).Msg("requeue failed, score dropped")
				}
			}
		}
		return
	}

	w.log.Debug().Int("batch", len(batch)).Msg("Scores persisted")
}
