package repository

import (
	"context"
	"database/sql"
	"peer_review_hub/internal/domain/model"
)

type ReviewRepository interface {
	// Record persists the review and appends the reviewer to the project's
	// reviewer set as one atomic unit. The UNIQUE (project_id, reviewer_id)
	// constraint is the duplicate gate: a violation surfaces as
	// common.ErrDuplicateReview, and nothing is written.
	Record(ctx context.Context, review *model.Review) error

	ExistsForProjectAndReviewer(ctx context.Context, projectID, reviewerID string) (bool, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Review, error)
	ListByReviewer(ctx context.Context, reviewerID string) ([]model.Review, error)

	// CountAndAverage derives the aggregate pair for a project from the
	// current review set. Average is 0 when there are no reviews.
	CountAndAverage(ctx context.Context, projectID string) (int, float64, error)
}

type pgReviewRepository struct {
	db *sql.DB
}

func NewPgReviewRepository(db *sql.DB) ReviewRepository {
	return &pgReviewRepository{db: db}
}

func (r *pgReviewRepository) Record(ctx context.Context, rev *model.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErrorf("pgReviewRepository.Record begin", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO reviews (id, project_id, reviewer_id, clarity, quality, originality, technical, presentation,
	                                overall_rating, strengths, weaknesses, suggestions, general,
	                                is_anonymous, is_helpful, helpful_count, status)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	           RETURNING created_at`

	err = tx.QueryRowContext(ctx, insert,
		rev.ID, rev.ProjectID, rev.ReviewerID,
		rev.Scores.Clarity, rev.Scores.Quality, rev.Scores.Originality, rev.Scores.Technical, rev.Scores.Presentation,
		rev.OverallRating,
		rev.Feedback.Strengths, rev.Feedback.Weaknesses, nullable(rev.Feedback.Suggestions), nullable(rev.Feedback.General),
		rev.IsAnonymous, rev.IsHelpful, rev.HelpfulCount, rev.Status,
	).Scan(&rev.CreatedAt)
	if err != nil {
		return recordInsertError(err)
	}

	// Reviewer-set union. The WHERE clause makes a replay harmless even
	// though the unique constraint above already rules duplicates out.
	appendReviewer := `UPDATE projects
	                   SET reviewer_ids = array_append(reviewer_ids, $2),
	                       updated_at = CURRENT_TIMESTAMP
	                   WHERE id = $1 AND NOT (reviewer_ids @> ARRAY[$2]::uuid[])`
	if _, err := tx.ExecContext(ctx, appendReviewer, rev.ProjectID, rev.ReviewerID); err != nil {
		return storeErrorf("pgReviewRepository.Record append reviewer", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErrorf("pgReviewRepository.Record commit", err)
	}
	return nil
}

func (r *pgReviewRepository) ExistsForProjectAndReviewer(ctx context.Context, projectID, reviewerID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE project_id = $1 AND reviewer_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, projectID, reviewerID).Scan(&exists); err != nil {
		return false, storeErrorf("pgReviewRepository.ExistsForProjectAndReviewer", err)
	}
	return exists, nil
}

const reviewColumns = `r.id, r.project_id, r.reviewer_id,
       r.clarity, r.quality, r.originality, r.technical, r.presentation,
       r.overall_rating, r.strengths, r.weaknesses, r.suggestions, r.general,
       r.is_anonymous, r.is_helpful, r.helpful_count, r.status, r.created_at`

func (r *pgReviewRepository) ListByProject(ctx context.Context, projectID string) ([]model.Review, error) {
	query := `SELECT ` + reviewColumns + `, NULL
	          FROM reviews r
	          WHERE r.project_id = $1
	          ORDER BY r.created_at DESC`
	return r.queryMany(ctx, query, "ListByProject", projectID)
}

func (r *pgReviewRepository) ListByReviewer(ctx context.Context, reviewerID string) ([]model.Review, error) {
	query := `SELECT ` + reviewColumns + `, p.title
	          FROM reviews r
	          JOIN projects p ON r.project_id = p.id
	          WHERE r.reviewer_id = $1
	          ORDER BY r.created_at DESC`
	return r.queryMany(ctx, query, "ListByReviewer", reviewerID)
}

func (r *pgReviewRepository) CountAndAverage(ctx context.Context, projectID string) (int, float64, error) {
	query := `SELECT COUNT(*), COALESCE(AVG(overall_rating), 0)
	          FROM reviews WHERE project_id = $1`
	var count int
	var average float64
	if err := r.db.QueryRowContext(ctx, query, projectID).Scan(&count, &average); err != nil {
		return 0, 0, storeErrorf("pgReviewRepository.CountAndAverage", err)
	}
	return count, average, nil
}

func (r *pgReviewRepository) queryMany(ctx context.Context, query, op string, args ...interface{}) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErrorf("pgReviewRepository."+op, err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rev model.Review
		var suggestions, general sql.NullString
		err := rows.Scan(
			&rev.ID, &rev.ProjectID, &rev.ReviewerID,
			&rev.Scores.Clarity, &rev.Scores.Quality, &rev.Scores.Originality, &rev.Scores.Technical, &rev.Scores.Presentation,
			&rev.OverallRating, &rev.Feedback.Strengths, &rev.Feedback.Weaknesses, &suggestions, &general,
			&rev.IsAnonymous, &rev.IsHelpful, &rev.HelpfulCount, &rev.Status, &rev.CreatedAt,
			&rev.ProjectTitle,
		)
		if err != nil {
			return nil, storeErrorf("pgReviewRepository."+op+" scan", err)
		}
		rev.Feedback.Suggestions = suggestions.String
		rev.Feedback.General = general.String
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErrorf("pgReviewRepository."+op+" rows.Err", err)
	}
	return reviews, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
