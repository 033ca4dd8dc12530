package service

import (
	"context"
	"errors"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/model"
	"strings"
	"testing"
)

func newProjectFixture() (*ProjectService, *fakeProjectRepo, *fakeReviewRepo) {
	projects := newFakeProjectRepo()
	reviews := newFakeReviewRepo(projects)
	return NewProjectService(projects, reviews), projects, reviews
}

func TestCreateProject(t *testing.T) {
	svc, _, _ := newProjectFixture()

	project, err := svc.CreateProject(context.Background(), "userA", CreateProjectRequest{
		Title:       "  My Research Paper  ",
		Description: "A study of things.",
		Category:    "research",
		Tags:        []string{"science", " data ", "science"},
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if project.Title != "My Research Paper" {
		t.Errorf("title = %q, want trimmed", project.Title)
	}
	if project.Slug != "my-research-paper" {
		t.Errorf("slug = %q", project.Slug)
	}
	if project.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", project.Status)
	}
	if project.SubmitterID != "userA" {
		t.Errorf("submitter = %q", project.SubmitterID)
	}
	if len(project.Tags) != 2 {
		t.Errorf("tags = %v, want deduplicated pair", project.Tags)
	}
	if project.ReviewCount != 0 || project.AverageRating != 0 {
		t.Error("new project must start with zero aggregates")
	}
	if project.MaxReviewers <= 0 {
		t.Errorf("max reviewers = %d, want positive default", project.MaxReviewers)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	svc, _, _ := newProjectFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateProjectRequest
	}{
		{"empty title", CreateProjectRequest{Description: "d"}},
		{"title too long", CreateProjectRequest{Title: strings.Repeat("x", 201), Description: "d"}},
		{"empty description", CreateProjectRequest{Title: "t"}},
		{"description too long", CreateProjectRequest{Title: "t", Description: strings.Repeat("x", 2001)}},
		{"unknown category", CreateProjectRequest{Title: "t", Description: "d", Category: "poetry"}},
		{"multibyte title too long", CreateProjectRequest{Title: strings.Repeat("案", 201), Description: "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProject(ctx, "userA", tt.req); !errors.Is(err, common.ErrValidation) {
				t.Errorf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateProjectMultibyteUnderLimit(t *testing.T) {
	// 150 characters of 3-byte runes exceed 200 bytes but not 200 characters.
	svc, _, _ := newProjectFixture()
	project, err := svc.CreateProject(context.Background(), "userA", CreateProjectRequest{
		Title:       strings.Repeat("案", 150),
		Description: strings.Repeat("説", 2000),
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", project.Status)
	}
}

func TestCreateProjectDefaultsCategory(t *testing.T) {
	svc, _, _ := newProjectFixture()
	project, err := svc.CreateProject(context.Background(), "userA", CreateProjectRequest{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.Category != model.CategoryOther {
		t.Errorf("category = %q, want other", project.Category)
	}
}

func TestCreateProjectSlugCollision(t *testing.T) {
	svc, _, _ := newProjectFixture()
	ctx := context.Background()

	first, err := svc.CreateProject(ctx, "userA", CreateProjectRequest{Title: "Same Title", Description: "d"})
	if err != nil {
		t.Fatalf("first CreateProject: %v", err)
	}
	second, err := svc.CreateProject(ctx, "userB", CreateProjectRequest{Title: "Same Title", Description: "d"})
	if err != nil {
		t.Fatalf("second CreateProject: %v", err)
	}
	if first.Slug == second.Slug {
		t.Errorf("slugs must differ, both %q", first.Slug)
	}
	if !strings.HasPrefix(second.Slug, "same-title-") {
		t.Errorf("second slug = %q, want suffixed variant", second.Slug)
	}
}

func TestGetProjectDetail(t *testing.T) {
	svc, projects, reviews := newProjectFixture()
	ctx := context.Background()
	projects.put(pendingProject("p1", "userA"))
	seedReview(t, reviews, "p1", "userB", 4)

	detail, err := svc.GetProjectDetail(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProjectDetail: %v", err)
	}
	if detail.Project.ID != "p1" {
		t.Errorf("project id = %q", detail.Project.ID)
	}
	if len(detail.Reviews) != 1 {
		t.Fatalf("reviews = %d, want 1", len(detail.Reviews))
	}
	if !detail.Reviews[0].IsAnonymous {
		t.Error("review on the detail path must be anonymous")
	}

	if _, err := svc.GetProjectDetail(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("want not-found error, got %v", err)
	}
}

func TestGetDashboard(t *testing.T) {
	svc, projects, reviews := newProjectFixture()
	ctx := context.Background()

	projects.put(pendingProject("mine", "me"))
	projects.put(pendingProject("theirs", "other"))
	seedReview(t, reviews, "theirs", "me", 4)

	dashboard, err := svc.GetDashboard(ctx, "me")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if len(dashboard.SubmittedProjects) != 1 || dashboard.SubmittedProjects[0].ID != "mine" {
		t.Errorf("submitted projects wrong: %v", projectIDs(dashboard.SubmittedProjects))
	}
	if len(dashboard.AssignedReviews) != 1 || dashboard.AssignedReviews[0].ID != "theirs" {
		t.Errorf("assigned reviews wrong: %v", projectIDs(dashboard.AssignedReviews))
	}
	if len(dashboard.ReviewsGiven) != 1 || dashboard.ReviewsGiven[0].ProjectID != "theirs" {
		t.Errorf("reviews given wrong: %+v", dashboard.ReviewsGiven)
	}
}

func TestGetDashboardEmpty(t *testing.T) {
	svc, _, _ := newProjectFixture()
	dashboard, err := svc.GetDashboard(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if dashboard.SubmittedProjects == nil || dashboard.AssignedReviews == nil || dashboard.ReviewsGiven == nil {
		t.Error("empty dashboard sections must be empty slices, not nil")
	}
}
