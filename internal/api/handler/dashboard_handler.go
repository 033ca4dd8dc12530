package handler

import (
	"net/http"
	"peer_review_hub/internal/api/middleware"
	"peer_review_hub/internal/app/service"
	"peer_review_hub/internal/common"

	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	projectService *service.ProjectService
}

func NewDashboardHandler(ps *service.ProjectService) *DashboardHandler {
	return &DashboardHandler{projectService: ps}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.getDashboard)
}

func (h *DashboardHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	dashboard, err := h.projectService.GetDashboard(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dashboard)
}
