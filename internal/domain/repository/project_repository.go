package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/model"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// QueueOrder selects the ordering of the review queue.
type QueueOrder string

const (
	OrderNewest   QueueOrder = "newest"
	OrderOldest   QueueOrder = "oldest"
	OrderCategory QueueOrder = "category"
)

// QueueFilter narrows and orders the review queue. Zero value means
// pending-only, newest first, repository default limit.
type QueueFilter struct {
	Search   string
	Category model.ProjectCategory
	Order    QueueOrder
	Limit    int
	Offset   int
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	FindProjectByID(ctx context.Context, id string) (*model.Project, error)
	FindProjectBySlug(ctx context.Context, slug string) (*model.Project, error)

	// ListReviewable returns pending projects that userID did not submit and
	// has not reviewed, per the queue filter.
	ListReviewable(ctx context.Context, userID string, filter QueueFilter) ([]model.Project, error)
	ListBySubmitter(ctx context.Context, userID string) ([]model.Project, error)
	ListByReviewer(ctx context.Context, userID string) ([]model.Project, error)
	ListProjectIDs(ctx context.Context) ([]string, error)

	// UpdateAggregates writes the derived review count and average rating.
	UpdateAggregates(ctx context.Context, projectID string, reviewCount int, averageRating float64) error
}

type pgProjectRepository struct {
	db *sql.DB
}

func NewPgProjectRepository(db *sql.DB) ProjectRepository {
	return &pgProjectRepository{db: db}
}

func (r *pgProjectRepository) CreateProject(ctx context.Context, p *model.Project) error {
	query := `INSERT INTO projects (id, title, slug, description, category, tags, file_path, file_name, file_type, submitter_id, status, max_reviewers, deadline)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Category, p.Tags, p.FilePath, p.FileName, p.FileType, p.SubmitterID, p.Status, p.MaxReviewers, p.Deadline)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("project with this slug already exists: %w", common.ErrConflict)
		}
		return storeErrorf("pgProjectRepository.CreateProject", err)
	}
	return nil
}

const projectColumns = `p.id, p.title, p.slug, p.description, p.category, p.tags,
       p.file_path, p.file_name, p.file_type,
       p.submitter_id, sub.name as submitter_name,
       p.status, p.reviewer_ids, p.max_reviewers, p.deadline,
       p.review_count, p.average_rating, p.created_at, p.updated_at`

func (r *pgProjectRepository) FindProjectByID(ctx context.Context, id string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + `
	          FROM projects p
	          JOIN users sub ON p.submitter_id = sub.id
	          WHERE p.id = $1`
	return r.queryOne(ctx, query, "FindProjectByID", id)
}

func (r *pgProjectRepository) FindProjectBySlug(ctx context.Context, slug string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + `
	          FROM projects p
	          JOIN users sub ON p.submitter_id = sub.id
	          WHERE p.slug = $1`
	return r.queryOne(ctx, query, "FindProjectBySlug", slug)
}

func (r *pgProjectRepository) queryOne(ctx context.Context, query, op string, arg interface{}) (*model.Project, error) {
	project, err := scanProject(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrProjectNotFound
		}
		return nil, storeErrorf("pgProjectRepository."+op, err)
	}
	return project, nil
}

func (r *pgProjectRepository) ListReviewable(ctx context.Context, userID string, filter QueueFilter) ([]model.Project, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + projectColumns + `
	          FROM projects p
	          JOIN users sub ON p.submitter_id = sub.id
	          WHERE p.status = $1
	            AND p.submitter_id <> $2
	            AND NOT (p.reviewer_ids @> ARRAY[$2]::uuid[])`)
	args := []interface{}{model.StatusPending, userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		sb.WriteString(fmt.Sprintf(` AND (p.title ILIKE $%d OR p.description ILIKE $%d
	            OR EXISTS (SELECT 1 FROM unnest(p.tags) AS t WHERE t ILIKE $%d))`, n, n, n))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		sb.WriteString(fmt.Sprintf(` AND p.category = $%d`, len(args)))
	}

	switch filter.Order {
	case OrderOldest:
		sb.WriteString(` ORDER BY p.created_at ASC`)
	case OrderCategory:
		sb.WriteString(` ORDER BY p.category ASC, p.created_at DESC`)
	default:
		sb.WriteString(` ORDER BY p.created_at DESC`)
	}

	args = append(args, filter.Limit)
	sb.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	args = append(args, filter.Offset)
	sb.WriteString(fmt.Sprintf(` OFFSET $%d`, len(args)))

	return r.queryMany(ctx, sb.String(), "ListReviewable", args...)
}

func (r *pgProjectRepository) ListBySubmitter(ctx context.Context, userID string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + `
	          FROM projects p
	          JOIN users sub ON p.submitter_id = sub.id
	          WHERE p.submitter_id = $1
	          ORDER BY p.created_at DESC`
	return r.queryMany(ctx, query, "ListBySubmitter", userID)
}

func (r *pgProjectRepository) ListByReviewer(ctx context.Context, userID string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + `
	          FROM projects p
	          JOIN users sub ON p.submitter_id = sub.id
	          WHERE p.reviewer_ids @> ARRAY[$1]::uuid[]
	          ORDER BY p.created_at DESC`
	return r.queryMany(ctx, query, "ListByReviewer", userID)
}

func (r *pgProjectRepository) ListProjectIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, storeErrorf("pgProjectRepository.ListProjectIDs", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErrorf("pgProjectRepository.ListProjectIDs scan", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErrorf("pgProjectRepository.ListProjectIDs rows.Err", err)
	}
	return ids, nil
}

func (r *pgProjectRepository) UpdateAggregates(ctx context.Context, projectID string, reviewCount int, averageRating float64) error {
	query := `UPDATE projects
	          SET review_count = $2, average_rating = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, projectID, reviewCount, averageRating)
	if err != nil {
		return storeErrorf("pgProjectRepository.UpdateAggregates", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return common.ErrProjectNotFound
	}
	return nil
}

func (r *pgProjectRepository) queryMany(ctx context.Context, query, op string, args ...interface{}) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErrorf("pgProjectRepository."+op, err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, storeErrorf("pgProjectRepository."+op+" scan", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErrorf("pgProjectRepository."+op+" rows.Err", err)
	}
	return projects, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// pgTypeMap adapts Postgres array columns to Go slices through database/sql.
var pgTypeMap = pgtype.NewMap()

func scanProject(row rowScanner) (*model.Project, error) {
	project := &model.Project{}
	err := row.Scan(
		&project.ID, &project.Title, &project.Slug, &project.Description, &project.Category,
		pgTypeMap.SQLScanner(&project.Tags),
		&project.FilePath, &project.FileName, &project.FileType,
		&project.SubmitterID, &project.SubmitterName,
		&project.Status,
		pgTypeMap.SQLScanner(&project.ReviewerIDs),
		&project.MaxReviewers, &project.Deadline,
		&project.ReviewCount, &project.AverageRating, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return project, nil
}
