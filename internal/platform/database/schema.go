package database

import (
	"context"
	"fmt"
)

// Schema statements are idempotent so they can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              UUID PRIMARY KEY,
		name            VARCHAR(100) NOT NULL,
		email           VARCHAR(255) NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		role            VARCHAR(20) NOT NULL DEFAULT 'learner',
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id             UUID PRIMARY KEY,
		title          VARCHAR(200) NOT NULL,
		slug           VARCHAR(220) NOT NULL UNIQUE,
		description    VARCHAR(2000) NOT NULL,
		category       VARCHAR(20) NOT NULL DEFAULT 'other',
		tags           TEXT[] NOT NULL DEFAULT '{}',
		file_path      TEXT,
		file_name      TEXT,
		file_type      TEXT,
		submitter_id   UUID NOT NULL REFERENCES users(id),
		status         VARCHAR(20) NOT NULL DEFAULT 'pending',
		reviewer_ids   UUID[] NOT NULL DEFAULT '{}',
		max_reviewers  INT NOT NULL DEFAULT 3,
		deadline       TIMESTAMPTZ,
		review_count   INT NOT NULL DEFAULT 0,
		average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_submitter ON projects (submitter_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects (status)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_category ON projects (category)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id             UUID PRIMARY KEY,
		project_id     UUID NOT NULL REFERENCES projects(id),
		reviewer_id    UUID NOT NULL REFERENCES users(id),
		clarity        INT NOT NULL CHECK (clarity BETWEEN 1 AND 5),
		quality        INT NOT NULL CHECK (quality BETWEEN 1 AND 5),
		originality    INT NOT NULL CHECK (originality BETWEEN 1 AND 5),
		technical      INT NOT NULL CHECK (technical BETWEEN 1 AND 5),
		presentation   INT NOT NULL CHECK (presentation BETWEEN 1 AND 5),
		overall_rating INT NOT NULL CHECK (overall_rating BETWEEN 1 AND 5),
		strengths      VARCHAR(1000) NOT NULL,
		weaknesses     VARCHAR(1000) NOT NULL,
		suggestions    VARCHAR(1000),
		general        VARCHAR(1000),
		is_anonymous   BOOLEAN NOT NULL DEFAULT TRUE,
		is_helpful     BOOLEAN NOT NULL DEFAULT FALSE,
		helpful_count  INT NOT NULL DEFAULT 0,
		status         VARCHAR(20) NOT NULL DEFAULT 'submitted',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT reviews_project_reviewer_key UNIQUE (project_id, reviewer_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reviews_project ON reviews (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_reviewer ON reviews (reviewer_id)`,
}

// Migrate applies the schema. The UNIQUE (project_id, reviewer_id) constraint
// on reviews is what makes the duplicate-review check-and-insert atomic under
// concurrent submissions.
func Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database.Migrate: %w", err)
		}
	}
	return nil
}
