package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"go.uber.org/zap"
)

// writeServiceError maps pipeline errors onto status codes. Generation is checked
// before context errors because a backend timeout wraps context.DeadlineExceeded.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "invalid_token", "Missing bearer token")
	case domain.IsAuthError(err):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid token")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrCatalogUnavailable):
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", "Product service unavailable")
	case errors.Is(err, domain.ErrGenerationUnavailable):
		writeError(w, http.StatusInternalServerError, "generation_unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	default:
		h.logger.Error("unhandled pipeline error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
