package handler

import (
	"net/http"

	"github.com/actuallystonmai/product-recommendation-service/internal/auth"
	"github.com/actuallystonmai/product-recommendation-service/internal/service"
)

// POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if _, err := h.service.Authenticate(service.PipelineChat, token); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req ChatRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.service.Chat(r.Context(), token, req.Message, req.ConversationID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
