package handler

import "net/http"

// POST /query
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.service.Query(r.Context(), req.Query, req.Context)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
