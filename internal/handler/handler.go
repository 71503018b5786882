package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service  *service.Service
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)
	return &Handler{
		service:  svc,
		validate: validate,
		logger:   logger.Named("handler"),
	}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags. An empty
// body decodes as an empty object.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{ normalize() }) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
	}
	dst.normalize()
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, describeValidation(err))
	}
	return nil
}
