package service

import (
	"context"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/model"
	"peer_review_hub/internal/domain/repository"
	"peer_review_hub/internal/platform/config"
	"strings"
)

// QueueService produces the list of projects a user may pick up for review:
// pending status, not their own submission, not already reviewed by them.
type QueueService struct {
	projectRepo repository.ProjectRepository
}

func NewQueueService(projectRepo repository.ProjectRepository) *QueueService {
	return &QueueService{projectRepo: projectRepo}
}

type QueueRequest struct {
	Search   string
	Category string
	Order    string
	Offset   int
}

func (s *QueueService) ProjectsForReview(ctx context.Context, userID string, req QueueRequest) ([]model.Project, error) {
	filter := repository.QueueFilter{
		Search: strings.TrimSpace(req.Search),
		Limit:  config.AppConfig.ReviewQueueLimit,
		Offset: req.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if req.Category != "" {
		category := model.ProjectCategory(req.Category)
		if !model.ValidCategory(category) {
			return nil, common.Errorf("unknown category %q: %w", req.Category, common.ErrValidation)
		}
		filter.Category = category
	}

	switch req.Order {
	case "", "newest":
		filter.Order = repository.OrderNewest
	case "oldest":
		filter.Order = repository.OrderOldest
	case "category":
		filter.Order = repository.OrderCategory
	default:
		return nil, common.Errorf("unknown ordering %q: %w", req.Order, common.ErrValidation)
	}

	projects, err := s.projectRepo.ListReviewable(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}
