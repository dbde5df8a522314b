package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/quizgate/internal/config"
	"github.com/stemsi/quizgate/internal/model"
)

// ScoreQueue is the Redis list graded scores travel through on their way to
// PostgreSQL. It satisfies service.ScorePublisher.
type ScoreQueue struct {
	rdb *redis.Client
	key string
}

// NewScoreQueue creates a ScoreQueue on the configured persist-scores key.
func NewScoreQueue(rdb *redis.Client) *ScoreQueue {
	return &ScoreQueue{rdb: rdb, key: config.WorkerKey.PersistScoresQueue}
}

// Publish enqueues a score record.
func (q *ScoreQueue) Publish(ctx context.Context, rec *model.ScoreRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("rpush score: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the next raw record. A timeout yields
// (nil, nil).
func (q *ScoreQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(item) < 2 {
		return nil, nil
	}
	return []byte(item[1]), nil
}

// Requeue pushes a record back onto the tail of the queue.
func (q *ScoreQueue) Requeue(ctx context.Context, rec *model.ScoreRecord) error {
	return q.Publish(ctx, rec)
}

// Len reports the number of pending records.
func (q *ScoreQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
