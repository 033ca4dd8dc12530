package handler

import (
	"encoding/json"
	"net/http"
	"peer_review_hub/internal/api/middleware"
	"peer_review_hub/internal/app/service"
	"peer_review_hub/internal/common"
	"peer_review_hub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(rs *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: rs}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.submitReview)
	r.Get("/mine", h.myReviews)
	r.Get("/eligibility/{projectID}", h.checkEligibility)
}

func (h *ReviewHandler) submitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	review, err := h.reviewService.SubmitReview(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) myReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	reviews, err := h.reviewService.ReviewsGivenBy(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	common.RespondWithJSON(w, http.StatusOK, reviews)
}

// checkEligibility is the advisory pre-check the UI calls before showing the
// review form. Submission re-validates atomically.
func (h *ReviewHandler) checkEligibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectID")

	eligible, err := h.reviewService.CanReview(r.Context(), userID, projectID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"can_review": eligible})
}
