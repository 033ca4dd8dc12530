package service

import (
	"context"
	"log"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RecomputeEnqueuer schedules a deferred aggregate recompute for a project.
type RecomputeEnqueuer interface {
	EnqueueRecompute(ctx context.Context, projectID string) error
}

// AggregationQueue carries project ids whose derived fields need a recompute.
// Producers: the review recorder (when a synchronous recompute fails after a
// committed review) and the admin reconcile endpoint. Consumer: the repair
// worker.
type AggregationQueue struct {
	rdb *redis.Client
}

var _ RecomputeEnqueuer = (*AggregationQueue)(nil)

func NewAggregationQueue(rdb *redis.Client) *AggregationQueue {
	return &AggregationQueue{rdb: rdb}
}

func (q *AggregationQueue) EnqueueRecompute(ctx context.Context, projectID string) error {
	if err := q.rdb.LPush(ctx, config.AppConfig.AggregationQueueName, projectID).Err(); err != nil {
		return common.Errorf("failed to enqueue recompute for project %s: %w", projectID, err)
	}
	log.Printf("Recompute for project %s enqueued.", projectID)
	return nil
}
