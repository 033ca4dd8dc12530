package model

import (
	"fmt"
	"peer_review_hub/internal/common"
	"strings"
	"time"
	"unicode/utf8"
)

type ReviewStatus string

const (
	ReviewStatusDraft     ReviewStatus = "draft"
	ReviewStatusSubmitted ReviewStatus = "submitted"
	ReviewStatusApproved  ReviewStatus = "approved"
	ReviewStatusRejected  ReviewStatus = "rejected"
)

const (
	ScoreMin           = 1
	ScoreMax           = 5
	FeedbackMaxLen     = 1000
	criterionClarity   = "clarity"
	criterionQuality   = "quality"
	criterionOrig      = "originality"
	criterionTechnical = "technical"
	criterionPresent   = "presentation"
)

// Scores holds the five per-criterion ratings, each an integer in [1,5].
type Scores struct {
	Clarity      int `json:"clarity"`
	Quality      int `json:"quality"`
	Originality  int `json:"originality"`
	Technical    int `json:"technical"`
	Presentation int `json:"presentation"`
}

func (s Scores) Validate() error {
	criteria := []struct {
		name  string
		value int
	}{
		{criterionClarity, s.Clarity},
		{criterionQuality, s.Quality},
		{criterionOrig, s.Originality},
		{criterionTechnical, s.Technical},
		{criterionPresent, s.Presentation},
	}
	for _, c := range criteria {
		if c.value < ScoreMin || c.value > ScoreMax {
			return fmt.Errorf("score %q must be between %d and %d, got %d: %w",
				c.name, ScoreMin, ScoreMax, c.value, common.ErrValidation)
		}
	}
	return nil
}

// Average is the mean of the five criterion scores. Display only; aggregation
// uses the independently chosen overall rating.
func (s Scores) Average() float64 {
	return float64(s.Clarity+s.Quality+s.Originality+s.Technical+s.Presentation) / 5.0
}

// Feedback is the structured free-text portion of a review. Strengths and
// weaknesses are required; suggestions and general are optional.
type Feedback struct {
	Strengths   string `json:"strengths"`
	Weaknesses  string `json:"weaknesses"`
	Suggestions string `json:"suggestions,omitempty"`
	General     string `json:"general,omitempty"`
}

func (f Feedback) Validate() error {
	if strings.TrimSpace(f.Strengths) == "" {
		return fmt.Errorf("feedback field %q must not be empty: %w", "strengths", common.ErrValidation)
	}
	if strings.TrimSpace(f.Weaknesses) == "" {
		return fmt.Errorf("feedback field %q must not be empty: %w", "weaknesses", common.ErrValidation)
	}
	fields := []struct {
		name  string
		value string
	}{
		{"strengths", f.Strengths},
		{"weaknesses", f.Weaknesses},
		{"suggestions", f.Suggestions},
		{"general", f.General},
	}
	for _, fld := range fields {
		// Limits are in characters, not bytes.
		if utf8.RuneCountInString(fld.value) > FeedbackMaxLen {
			return fmt.Errorf("feedback field %q exceeds %d characters: %w",
				fld.name, FeedbackMaxLen, common.ErrValidation)
		}
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Feedback) Trimmed() Feedback {
	return Feedback{
		Strengths:   strings.TrimSpace(f.Strengths),
		Weaknesses:  strings.TrimSpace(f.Weaknesses),
		Suggestions: strings.TrimSpace(f.Suggestions),
		General:     strings.TrimSpace(f.General),
	}
}

type Review struct {
	ID            string       `json:"id"`
	ProjectID     string       `json:"project_id"`
	ReviewerID    string       `json:"-"` // Anonymous: never serialized on read paths
	Scores        Scores       `json:"scores"`
	OverallRating int          `json:"overall_rating"`
	Feedback      Feedback     `json:"feedback"`
	IsAnonymous   bool         `json:"is_anonymous"`
	IsHelpful     bool         `json:"is_helpful"`
	HelpfulCount  int          `json:"helpful_count"`
	Status        ReviewStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`

	ProjectTitle *string `json:"project_title,omitempty"` // For the reviewer's own listings
}

// ValidateOverallRating checks the holistic rating, which is chosen by the
// reviewer and is not derived from the criterion scores.
func ValidateOverallRating(rating int) error {
	if rating < ScoreMin || rating > ScoreMax {
		return fmt.Errorf("overall rating must be between %d and %d, got %d: %w",
			ScoreMin, ScoreMax, rating, common.ErrValidation)
	}
	return nil
}
