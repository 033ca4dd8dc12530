package repository

import (
	"errors"
	"fmt"
	"peer_review_hub/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
)

// storeErrorf wraps a failed store round trip so callers can classify it as
// retryable through common.ErrStoreUnavailable.
func storeErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, err, common.ErrStoreUnavailable)
}

// recordInsertError maps constraint violations on the review insert to domain
// errors. The two foreign keys are told apart by constraint name so a missing
// reviewer is not reported as a missing project.
func recordInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == "reviews_project_reviewer_key":
			return common.ErrDuplicateReview
		case pgErr.Code == "23503" && pgErr.ConstraintName == "reviews_project_id_fkey":
			return common.ErrProjectNotFound
		case pgErr.Code == "23503":
			return fmt.Errorf("reviewer does not exist: %w", common.ErrNotFound)
		case pgErr.Code == "23514": // Check constraint: score out of range
			return fmt.Errorf("review violates score constraints: %w", common.ErrValidation)
		}
	}
	return storeErrorf("pgReviewRepository.Record insert", err)
}
