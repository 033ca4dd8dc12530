package handler

import (
	"net/http"
	"peer_review_hub/internal/api/middleware"
	"peer_review_hub/internal/app/service"
	"peer_review_hub/internal/common"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	aggregationSvc *service.AggregationService
}

func NewAdminHandler(aggregationSvc *service.AggregationService) *AdminHandler {
	return &AdminHandler{aggregationSvc: aggregationSvc}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Post("/reconcile", h.reconcile)
}

// reconcile runs the repair pass over every project's derived aggregates.
// Safe to call while submissions are in flight.
func (h *AdminHandler) reconcile(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.aggregationSvc.ReconcileAll(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int{"projects_recomputed": repaired})
}
