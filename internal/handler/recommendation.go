package handler

import (
	"net/http"

	"github.com/actuallystonmai/product-recommendation-service/internal/auth"
	"github.com/actuallystonmai/product-recommendation-service/internal/service"
)

// POST /recommendations
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if _, err := h.service.Authenticate(service.PipelineRecommend, token); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req RecommendationRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.service.Recommend(r.Context(), token, service.RecommendRequest{
		UserPreferences: req.UserPreferences,
		Category:        req.Category,
		BudgetMax:       req.BudgetMax,
		PreviousOrders:  req.PreviousOrders,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
