package handler

import (
	"encoding/json"
	"net/http"
	"peer_review_hub/internal/api/middleware"
	"peer_review_hub/internal/app/service"
	"peer_review_hub/internal/common"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	queueService   *service.QueueService
}

func NewProjectHandler(ps *service.ProjectService, qs *service.QueueService) *ProjectHandler {
	return &ProjectHandler{projectService: ps, queueService: qs}
}

func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createProject)
	r.Get("/for-review", h.projectsForReview)
	r.Get("/{projectID}", h.getProject)
}

func (h *ProjectHandler) createProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, project)
}

// projectsForReview serves the review queue: pending projects the caller may
// review, filtered and ordered by query parameters.
func (h *ProjectHandler) projectsForReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		offset = parsed
	}

	req := service.QueueRequest{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Order:    r.URL.Query().Get("order"),
		Offset:   offset,
	}

	projects, err := h.queueService.ProjectsForReview(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) getProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	detail, err := h.projectService.GetProjectDetail(r.Context(), projectID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}
