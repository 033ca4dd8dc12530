package model

import (
	"strings"
	"time"
)

type ProjectCategory string
type ProjectStatus string

const (
	CategoryEssay        ProjectCategory = "essay"
	CategoryCode         ProjectCategory = "code"
	CategoryArtwork      ProjectCategory = "artwork"
	CategoryVideo        ProjectCategory = "video"
	CategoryPresentation ProjectCategory = "presentation"
	CategoryResearch     ProjectCategory = "research"
	CategoryOther        ProjectCategory = "other"

	StatusPending     ProjectStatus = "pending"
	StatusUnderReview ProjectStatus = "under_review"
	StatusCompleted   ProjectStatus = "completed"
	StatusArchived    ProjectStatus = "archived"
)

func ValidCategory(c ProjectCategory) bool {
	switch c {
	case CategoryEssay, CategoryCode, CategoryArtwork, CategoryVideo,
		CategoryPresentation, CategoryResearch, CategoryOther:
		return true
	}
	return false
}

const MaxProjectTags = 5

type Project struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Category    ProjectCategory `json:"category"`
	Tags        []string        `json:"tags"`

	// Opaque file reference owned by the upload collaborator. Never
	// inspected here, only stored and returned.
	FilePath *string `json:"file_path,omitempty"`
	FileName *string `json:"file_name,omitempty"`
	FileType *string `json:"file_type,omitempty"`

	SubmitterID   string        `json:"submitter_id"`
	Status        ProjectStatus `json:"status"`
	ReviewerIDs   []string      `json:"reviewer_ids"` // append-only, no duplicates, never the submitter
	MaxReviewers  int           `json:"max_reviewers"`
	Deadline      *time.Time    `json:"deadline,omitempty"`
	ReviewCount   int           `json:"review_count"`
	AverageRating float64       `json:"average_rating"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	SubmitterName *string `json:"submitter_name,omitempty"` // For display
}

// HasReviewer reports whether userID already appears in the reviewer set.
func (p *Project) HasReviewer(userID string) bool {
	for _, id := range p.ReviewerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// NormalizeTags trims, drops empties, deduplicates preserving order, and caps
// the tag list at MaxProjectTags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == MaxProjectTags {
			break
		}
	}
	return out
}
