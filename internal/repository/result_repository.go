package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizgate/internal/model"
)

// ResultRepository persists graded scores to the quiz_results ledger.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// BulkInsert writes a batch of score records in one statement.
func (r *ResultRepository) BulkInsert(ctx context.Context, batch []*model.ScoreRecord) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	sessionIDs := make([]string, 0, n)
	corrects := make([]int32, 0, n)
	totals := make([]int32, 0, n)
	percents := make([]int32, 0, n)
	rewarded := make([]bool, 0, n)
	gradedAts := make([]time.Time, 0, n)

	for _, rec := range batch {
		sessionIDs = append(sessionIDs, rec.SessionID)
		corrects = append(corrects, int32(rec.Correct))
		totals = append(totals, int32(rec.Total))
		percents = append(percents, int32(rec.Percent))
		rewarded = append(rewarded, rec.Rewarded)
		gradedAts = append(gradedAts, rec.GradedAt)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_results (session_id, correct, total, percent, rewarded, graded_at)
		SELECT * FROM UNNEST(
			$1::text[],
			$2::int[],
			$3::int[],
			$4::int[],
			$5::bool[],
			$6::timestamptz[]
		)`,
		sessionIDs, corrects, totals, percents, rewarded, gradedAts,
	)
	return err
}

// Insert writes a single score record.
func (r *ResultRepository) Insert(ctx context.Context, rec *model.ScoreRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_results (session_id, correct, total, percent, rewarded, graded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.SessionID, rec.Correct, rec.Total, rec.Percent, rec.Rewarded, rec.GradedAt,
	)
	return err
}
