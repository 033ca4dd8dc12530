package service

import (
	"context"
	"math"
	"peer_review_hub/internal/domain/model"
	"testing"
)

func newAggregationFixture() (*AggregationService, *fakeProjectRepo, *fakeReviewRepo) {
	projects := newFakeProjectRepo()
	reviews := newFakeReviewRepo(projects)
	return NewAggregationService(projects, reviews), projects, reviews
}

func seedReview(t *testing.T, reviews *fakeReviewRepo, projectID, reviewerID string, rating int) {
	t.Helper()
	err := reviews.Record(context.Background(), &model.Review{
		ID:            projectID + "-" + reviewerID,
		ProjectID:     projectID,
		ReviewerID:    reviewerID,
		Scores:        model.Scores{Clarity: 3, Quality: 3, Originality: 3, Technical: 3, Presentation: 3},
		OverallRating: rating,
		Feedback:      model.Feedback{Strengths: "s", Weaknesses: "w"},
		IsAnonymous:   true,
		Status:        model.ReviewStatusSubmitted,
	})
	if err != nil {
		t.Fatalf("seeding review for %s by %s: %v", projectID, reviewerID, err)
	}
}

func TestRecomputeEmptyProject(t *testing.T) {
	svc, projects, _ := newAggregationFixture()
	projects.put(pendingProject("p1", "userA"))

	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	p := projects.get("p1")
	if p.ReviewCount != 0 {
		t.Errorf("review count = %d, want 0", p.ReviewCount)
	}
	if p.AverageRating != 0 {
		t.Errorf("average rating = %v, want 0 for empty review set", p.AverageRating)
	}
}

func TestRecomputeDerivesFromReviewSet(t *testing.T) {
	svc, projects, reviews := newAggregationFixture()
	projects.put(pendingProject("p1", "userA"))
	seedReview(t, reviews, "p1", "userB", 4)
	seedReview(t, reviews, "p1", "userC", 2)
	seedReview(t, reviews, "p1", "userD", 5)

	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	p := projects.get("p1")
	if p.ReviewCount != 3 {
		t.Errorf("review count = %d, want 3", p.ReviewCount)
	}
	want := (4.0 + 2.0 + 5.0) / 3.0
	if math.Abs(p.AverageRating-want) > 1e-9 {
		t.Errorf("average rating = %v, want %v", p.AverageRating, want)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	svc, projects, reviews := newAggregationFixture()
	projects.put(pendingProject("p1", "userA"))
	seedReview(t, reviews, "p1", "userB", 5)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := svc.Recompute(ctx, "p1"); err != nil {
			t.Fatalf("Recompute #%d: %v", i+1, err)
		}
	}

	p := projects.get("p1")
	if p.ReviewCount != 1 || p.AverageRating != 5.0 {
		t.Errorf("after repeated recompute: count=%d avg=%v, want 1/5.0", p.ReviewCount, p.AverageRating)
	}
}

func TestReconcileAllHealsDrift(t *testing.T) {
	svc, projects, reviews := newAggregationFixture()
	ctx := context.Background()

	p1 := pendingProject("p1", "userA")
	p1.ReviewCount = 99 // drifted by a direct data edit
	p1.AverageRating = 1.0
	projects.put(p1)
	projects.put(pendingProject("p2", "userB"))
	seedReview(t, reviews, "p1", "userB", 4)

	repaired, err := svc.ReconcileAll(ctx)
	if err != nil {
		t.Fatalf("ReconcileAll: %v", err)
	}
	if repaired != 2 {
		t.Errorf("repaired = %d, want 2", repaired)
	}

	if p := projects.get("p1"); p.ReviewCount != 1 || p.AverageRating != 4.0 {
		t.Errorf("p1 not healed: count=%d avg=%v", p.ReviewCount, p.AverageRating)
	}
	if p := projects.get("p2"); p.ReviewCount != 0 || p.AverageRating != 0 {
		t.Errorf("p2 aggregates wrong: count=%d avg=%v", p.ReviewCount, p.AverageRating)
	}
}
