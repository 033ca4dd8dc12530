package service

import (
	"context"
	"errors"
	"log"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/model"
	"peer_review_hub/internal/domain/repository"
	"peer_review_hub/internal/platform/config"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProjectService struct {
	projectRepo repository.ProjectRepository
	reviewRepo  repository.ReviewRepository
}

func NewProjectService(projectRepo repository.ProjectRepository, reviewRepo repository.ReviewRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, reviewRepo: reviewRepo}
}

const (
	titleMaxLen       = 200
	descriptionMaxLen = 2000
)

type CreateProjectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	FilePath    *string    `json:"file_path,omitempty"`
	FileName    *string    `json:"file_name,omitempty"`
	FileType    *string    `json:"file_type,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (s *ProjectService) CreateProject(ctx context.Context, submitterID string, req CreateProjectRequest) (*model.Project, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		return nil, common.Errorf("title is required: %w", common.ErrValidation)
	}
	if utf8.RuneCountInString(title) > titleMaxLen {
		return nil, common.Errorf("title exceeds %d characters: %w", titleMaxLen, common.ErrValidation)
	}
	if description == "" {
		return nil, common.Errorf("description is required: %w", common.ErrValidation)
	}
	if utf8.RuneCountInString(description) > descriptionMaxLen {
		return nil, common.Errorf("description exceeds %d characters: %w", descriptionMaxLen, common.ErrValidation)
	}

	category := model.ProjectCategory(req.Category)
	if category == "" {
		category = model.CategoryOther
	}
	if !model.ValidCategory(category) {
		return nil, common.Errorf("unknown category %q: %w", req.Category, common.ErrValidation)
	}

	project := &model.Project{
		ID:           uuid.NewString(),
		Title:        title,
		Slug:         slug.Make(title),
		Description:  description,
		Category:     category,
		Tags:         model.NormalizeTags(req.Tags),
		FilePath:     req.FilePath,
		FileName:     req.FileName,
		FileType:     req.FileType,
		SubmitterID:  submitterID,
		Status:       model.StatusPending,
		MaxReviewers: config.AppConfig.ProjectMaxReviewers,
		Deadline:     req.Deadline,
	}

	err := s.projectRepo.CreateProject(ctx, project)
	if errors.Is(err, common.ErrConflict) {
		// Slug taken by another project; retry once with a unique suffix.
		project.Slug = project.Slug + "-" + project.ID[:8]
		err = s.projectRepo.CreateProject(ctx, project)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("Project %s (%s) submitted by user %s.", project.ID, project.Slug, submitterID)
	return project, nil
}

// ProjectDetail is a project together with its reviews. Review structs carry
// no reviewer identity on this path.
type ProjectDetail struct {
	Project *model.Project `json:"project"`
	Reviews []model.Review `json:"reviews"`
}

func (s *ProjectService) GetProjectDetail(ctx context.Context, projectID string) (*ProjectDetail, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return &ProjectDetail{Project: project, Reviews: reviews}, nil
}

// Dashboard aggregates the caller's view: what they submitted (with the
// anonymous reviews received), what they are reviewing, and what they have
// reviewed.
type Dashboard struct {
	SubmittedProjects []model.Project `json:"submitted_projects"`
	AssignedReviews   []model.Project `json:"assigned_reviews"`
	ReviewsGiven      []model.Review  `json:"reviews_given"`
}

func (s *ProjectService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	submitted, err := s.projectRepo.ListBySubmitter(ctx, userID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.projectRepo.ListByReviewer(ctx, userID)
	if err != nil {
		return nil, err
	}
	given, err := s.reviewRepo.ListByReviewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{SubmittedProjects: submitted, AssignedReviews: assigned, ReviewsGiven: given}
	if dashboard.SubmittedProjects == nil {
		dashboard.SubmittedProjects = []model.Project{}
	}
	if dashboard.AssignedReviews == nil {
		dashboard.AssignedReviews = []model.Project{}
	}
	if dashboard.ReviewsGiven == nil {
		dashboard.ReviewsGiven = []model.Review{}
	}
	return dashboard, nil
}
