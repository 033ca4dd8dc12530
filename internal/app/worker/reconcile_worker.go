package worker

import (
	"context"
	"errors"
	"log"
	"peer_review_hub/internal/app/service"
	"peer_review_hub/internal/platform/config"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReconcileWorker heals drift in the derived project aggregates. It consumes
// project ids from the repair queue (enqueued when a post-commit recompute
// fails or when an admin requests reconciliation) and additionally sweeps
// every project on a timer. Recompute is idempotent, so the worker may race
// freely with in-flight submissions.
type ReconcileWorker struct {
	rdb            *redis.Client
	aggregationSvc *service.AggregationService
}

func NewReconcileWorker(rdb *redis.Client, aggregationSvc *service.AggregationService) *ReconcileWorker {
	return &ReconcileWorker{rdb: rdb, aggregationSvc: aggregationSvc}
}

func (w *ReconcileWorker) Start(ctx context.Context) {
	log.Println("Reconcile worker started, listening to queue:", config.AppConfig.AggregationQueueName)

	ticker := time.NewTicker(config.AppConfig.ReconcileInterval)
	defer ticker.Stop()
	go w.sweepLoop(ctx, ticker.C)

	for {
		select {
		case <-ctx.Done():
			log.Println("Reconcile worker stopping...")
			return
		default:
			// Blocking pop with a short timeout so shutdown is responsive.
			result, err := w.rdb.BRPop(ctx, 5*time.Second, config.AppConfig.AggregationQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue // Timeout, nothing queued
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				log.Printf("ERROR: Failed to BRPop from queue '%s': %v", config.AppConfig.AggregationQueueName, err)
				time.Sleep(5 * time.Second) // Wait before retrying on other errors
				continue
			}

			// result is [queueName, value]
			if len(result) < 2 || result[1] == "" {
				log.Println("WARN: BRPop returned empty project ID.")
				continue
			}
			projectID := result[1]

			if err := w.aggregationSvc.Recompute(ctx, projectID); err != nil {
				// Push back for a later attempt; the periodic sweep is the
				// backstop if the requeue itself fails.
				log.Printf("ERROR: recompute for project %s failed: %v", projectID, err)
				if rqErr := w.rdb.LPush(ctx, config.AppConfig.AggregationQueueName, projectID).Err(); rqErr != nil {
					log.Printf("ERROR: failed to requeue project %s: %v", projectID, rqErr)
				}
				time.Sleep(1 * time.Second)
				continue
			}
			log.Printf("Recomputed aggregates for project %s.", projectID)
		}
	}
}

func (w *ReconcileWorker) sweepLoop(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			repaired, err := w.aggregationSvc.ReconcileAll(ctx)
			if err != nil {
				log.Printf("ERROR: reconciliation sweep failed after %d projects: %v", repaired, err)
				continue
			}
			log.Printf("Reconciliation sweep recomputed %d projects.", repaired)
		}
	}
}
