package service

import (
	"context"
	"log"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/repository"
)

// AggregationService maintains the derived review_count and average_rating
// fields on projects. The fields are a materialized cache over the review
// set; Recompute is idempotent, so a repair pass can run at any time,
// including concurrently with submissions. A stale read during such a race is
// corrected by the next recompute.
type AggregationService struct {
	projectRepo repository.ProjectRepository
	reviewRepo  repository.ReviewRepository
}

func NewAggregationService(projectRepo repository.ProjectRepository, reviewRepo repository.ReviewRepository) *AggregationService {
	return &AggregationService{projectRepo: projectRepo, reviewRepo: reviewRepo}
}

// Recompute derives both aggregate fields from the current review set and
// writes them back. Average is the mean of overall ratings, 0 when the
// project has no reviews.
func (s *AggregationService) Recompute(ctx context.Context, projectID string) error {
	count, average, err := s.reviewRepo.CountAndAverage(ctx, projectID)
	if err != nil {
		return common.Errorf("failed to derive aggregates for project %s: %w", projectID, err)
	}
	if err := s.projectRepo.UpdateAggregates(ctx, projectID, count, average); err != nil {
		return common.Errorf("failed to write aggregates for project %s: %w", projectID, err)
	}
	return nil
}

// ReconcileAll recomputes every project, healing drift from direct data
// edits or recompute failures. Failures on individual projects are logged
// and skipped so one bad row cannot stall the sweep.
func (s *AggregationService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.projectRepo.ListProjectIDs(ctx)
	if err != nil {
		return 0, common.Errorf("failed to list projects for reconciliation: %w", err)
	}

	repaired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return repaired, ctx.Err()
		}
		if err := s.Recompute(ctx, id); err != nil {
			log.Printf("WARN: reconcile skipped project %s: %v", id, err)
			continue
		}
		repaired++
	}
	return repaired, nil
}
