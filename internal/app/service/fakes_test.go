package service

import (
	"context"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/model"
	"peer_review_hub/internal/domain/repository"
	"peer_review_hub/internal/platform/config"
	"sort"
	"strings"
	"sync"
	"time"
)

var loadConfig sync.Once

func configLoadOnce() {
	loadConfig.Do(config.Load)
}

// In-memory repositories for service tests. The review fake mirrors the
// store's behavior: the (project, reviewer) pair is unique, and recording a
// review appends the reviewer to the project as one atomic unit.

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*model.Project

	// When set, UpdateAggregates fails with this error. Simulates the store
	// going away between the review commit and the recompute write-back.
	aggregatesErr error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*model.Project)}
}

func (r *fakeProjectRepo) put(p *model.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.projects[p.ID] = &cp
}

func (r *fakeProjectRepo) get(id string) *model.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

func (r *fakeProjectRepo) CreateProject(ctx context.Context, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.projects {
		if existing.Slug == p.Slug {
			return common.Errorf("project with this slug already exists: %w", common.ErrConflict)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) FindProjectByID(ctx context.Context, id string) (*model.Project, error) {
	if p := r.get(id); p != nil {
		return p, nil
	}
	return nil, common.ErrProjectNotFound
}

func (r *fakeProjectRepo) FindProjectBySlug(ctx context.Context, slug string) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrProjectNotFound
}

func (r *fakeProjectRepo) ListReviewable(ctx context.Context, userID string, filter repository.QueueFilter) ([]model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Project
	for _, p := range r.projects {
		if p.Status != model.StatusPending || p.SubmitterID == userID || p.HasReviewer(userID) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		out = append(out, *p)
	}

	switch filter.Order {
	case repository.OrderOldest:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case repository.OrderCategory:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Category != out[j].Category {
				return out[i].Category < out[j].Category
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesSearch(p *model.Project, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (r *fakeProjectRepo) ListBySubmitter(ctx context.Context, userID string) ([]model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Project
	for _, p := range r.projects {
		if p.SubmitterID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) ListByReviewer(ctx context.Context, userID string) ([]model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Project
	for _, p := range r.projects {
		if p.HasReviewer(userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) ListProjectIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.projects))
	for id := range r.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeProjectRepo) UpdateAggregates(ctx context.Context, projectID string, reviewCount int, averageRating float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aggregatesErr != nil {
		return r.aggregatesErr
	}
	p, ok := r.projects[projectID]
	if !ok {
		return common.ErrProjectNotFound
	}
	p.ReviewCount = reviewCount
	p.AverageRating = averageRating
	return nil
}

type fakeReviewRepo struct {
	mu       sync.Mutex
	reviews  map[string]*model.Review // key: projectID + "|" + reviewerID
	projects *fakeProjectRepo

	// When set, ExistsForProjectAndReviewer reports false regardless of
	// state. Simulates the advisory pre-check being stale while the pair
	// constraint in Record stays authoritative.
	hideExisting bool
}

func newFakeReviewRepo(projects *fakeProjectRepo) *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*model.Review), projects: projects}
}

func pairKey(projectID, reviewerID string) string {
	return projectID + "|" + reviewerID
}

func (r *fakeReviewRepo) Record(ctx context.Context, rev *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(rev.ProjectID, rev.ReviewerID)
	if _, exists := r.reviews[key]; exists {
		return common.ErrDuplicateReview
	}

	r.projects.mu.Lock()
	defer r.projects.mu.Unlock()
	p, ok := r.projects.projects[rev.ProjectID]
	if !ok {
		return common.ErrProjectNotFound
	}

	rev.CreatedAt = time.Now()
	cp := *rev
	r.reviews[key] = &cp
	if !p.HasReviewer(rev.ReviewerID) {
		p.ReviewerIDs = append(p.ReviewerIDs, rev.ReviewerID)
	}
	return nil
}

func (r *fakeReviewRepo) ExistsForProjectAndReviewer(ctx context.Context, projectID, reviewerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideExisting {
		return false, nil
	}
	_, exists := r.reviews[pairKey(projectID, reviewerID)]
	return exists, nil
}

func (r *fakeReviewRepo) ListByProject(ctx context.Context, projectID string) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Review
	for _, rev := range r.reviews {
		if rev.ProjectID == projectID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) ListByReviewer(ctx context.Context, reviewerID string) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Review
	for _, rev := range r.reviews {
		if rev.ReviewerID == reviewerID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) CountAndAverage(ctx context.Context, projectID string) (int, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	sum := 0
	for _, rev := range r.reviews {
		if rev.ProjectID == projectID {
			count++
			sum += rev.OverallRating
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return count, float64(sum) / float64(count), nil
}

// fakeRepairQueue records the project ids handed to it.
type fakeRepairQueue struct {
	mu         sync.Mutex
	projectIDs []string
}

func (q *fakeRepairQueue) EnqueueRecompute(ctx context.Context, projectID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.projectIDs = append(q.projectIDs, projectID)
	return nil
}

func (q *fakeRepairQueue) enqueued() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.projectIDs...)
}

var _ repository.ProjectRepository = (*fakeProjectRepo)(nil)
var _ repository.ReviewRepository = (*fakeReviewRepo)(nil)
var _ RecomputeEnqueuer = (*fakeRepairQueue)(nil)
