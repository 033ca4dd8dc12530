package service

import (
	"context"
	"log"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/model"
	"peer_review_hub/internal/domain/repository"

	"github.com/google/uuid"
)

// ReviewService gates review eligibility and records reviews. The
// one-review-per-(project, reviewer) invariant is ultimately enforced by the
// store's unique constraint, not by the advisory pre-checks here.
type ReviewService struct {
	reviewRepo     repository.ReviewRepository
	projectRepo    repository.ProjectRepository
	aggregationSvc *AggregationService
	repairQueue    RecomputeEnqueuer
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	projectRepo repository.ProjectRepository,
	aggregationSvc *AggregationService,
	repairQueue RecomputeEnqueuer,
) *ReviewService {
	return &ReviewService{
		reviewRepo:     reviewRepo,
		projectRepo:    projectRepo,
		aggregationSvc: aggregationSvc,
		repairQueue:    repairQueue,
	}
}

// CanReview reports whether user may review the project: not their own
// submission, and not already reviewed by them. The result is advisory for
// the UI; SubmitReview re-validates atomically at write time.
func (s *ReviewService) CanReview(ctx context.Context, userID, projectID string) (bool, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	if project.SubmitterID == userID {
		return false, nil
	}
	exists, err := s.reviewRepo.ExistsForProjectAndReviewer(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

type SubmitReviewRequest struct {
	ProjectID     string         `json:"project_id"`
	Scores        model.Scores   `json:"scores"`
	OverallRating int            `json:"overall_rating"`
	Feedback      model.Feedback `json:"feedback"`
}

// SubmitReview validates and persists exactly one review for the
// (project, reviewer) pair. The review insert and the reviewer-set append
// commit together in the store (repository.Record); a concurrent duplicate
// loses to the unique constraint and surfaces as ErrDuplicateReview. The
// pre-checks only exist to give earlier, friendlier failures.
//
// A recompute failure after commit never rolls back the review: the review
// is the durable fact, and the project id goes on the repair queue instead.
func (s *ReviewService) SubmitReview(ctx context.Context, reviewerID string, req SubmitReviewRequest) (*model.Review, error) {
	if req.ProjectID == "" {
		return nil, common.Errorf("project id is required: %w", common.ErrValidation)
	}
	if err := req.Scores.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidateOverallRating(req.OverallRating); err != nil {
		return nil, err
	}
	feedback := req.Feedback.Trimmed()
	if err := feedback.Validate(); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.SubmitterID == reviewerID {
		return nil, common.ErrSelfReview
	}
	if exists, err := s.reviewRepo.ExistsForProjectAndReviewer(ctx, req.ProjectID, reviewerID); err != nil {
		return nil, err
	} else if exists {
		return nil, common.ErrDuplicateReview
	}

	review := &model.Review{
		ID:            uuid.NewString(),
		ProjectID:     project.ID,
		ReviewerID:    reviewerID,
		Scores:        req.Scores,
		OverallRating: req.OverallRating,
		Feedback:      feedback,
		IsAnonymous:   true, // Reviewer identity is never exposed to the submitter
		Status:        model.ReviewStatusSubmitted,
	}

	if err := s.reviewRepo.Record(ctx, review); err != nil {
		return nil, err
	}

	// The review is durable from here on. Aggregates are a derived cache:
	// if the synchronous recompute fails, schedule a repair instead of
	// failing the submission.
	if err := s.aggregationSvc.Recompute(ctx, project.ID); err != nil {
		log.Printf("ERROR: recompute after review %s failed: %v", review.ID, err)
		if qErr := s.repairQueue.EnqueueRecompute(ctx, project.ID); qErr != nil {
			log.Printf("ERROR: failed to enqueue recompute repair for project %s: %v", project.ID, qErr)
		}
	}

	log.Printf("Review %s recorded for project %s.", review.ID, project.ID)
	return review, nil
}

// ReviewsGivenBy lists the reviews authored by a user, with project titles
// for display.
func (s *ReviewService) ReviewsGivenBy(ctx context.Context, userID string) ([]model.Review, error) {
	return s.reviewRepo.ListByReviewer(ctx, userID)
}
