package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/generation"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteServiceError(t *testing.T) {
	h := &Handler{logger: zap.NewNop()}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing token", domain.ErrMissingToken, http.StatusUnauthorized, "invalid_token"},
		{"bad signature", fmt.Errorf("verify: %w", domain.ErrInvalidSignature), http.StatusUnauthorized, "invalid_token"},
		{"expired", domain.ErrTokenExpired, http.StatusUnauthorized, "invalid_token"},
		{"catalog", fmt.Errorf("%w: refused", domain.ErrCatalogUnavailable), http.StatusServiceUnavailable, "catalog_unavailable"},
		{"generation timeout", &generation.UnavailableError{Provider: "bedrock", Cause: context.DeadlineExceeded}, http.StatusInternalServerError, "generation_unavailable"},
		{"caller gone", context.Canceled, http.StatusServiceUnavailable, "request_timeout"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeServiceError(rec, httptest.NewRequest(http.MethodPost, "/recommendations", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestGenerationErrorMessageIsTagged(t *testing.T) {
	h := &Handler{logger: zap.NewNop()}
	rec := httptest.NewRecorder()
	h.writeServiceError(rec, httptest.NewRequest(http.MethodPost, "/query", nil),
		&generation.UnavailableError{Provider: "gemini", Cause: errors.New("quota exceeded")})

	assert.Contains(t, rec.Body.String(), "GenerationError.Unavailable")
}

func newTestHandler() *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonTagName)
	return &Handler{validate: v, logger: zap.NewNop()}
}

func TestDecodeAndValidate(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name    string
		body    string
		dst     interface{ normalize() }
		wantErr string
	}{
		{"empty body", ``, &RecommendationRequest{}, ""},
		{"full recommendation", `{"user_preferences":" gaming ","budget_max":0,"previous_orders":["p1"]}`, &RecommendationRequest{}, ""},
		{"negative budget", `{"budget_max":-5}`, &RecommendationRequest{}, "budget_max failed gte"},
		{"blank order id", `{"previous_orders":[""]}`, &RecommendationRequest{}, "previous_orders[0] failed required"},
		{"blank query", `{"query":"   "}`, &QueryRequest{}, "query failed required"},
		{"missing message", `{}`, &ChatRequest{}, "message failed required"},
		{"long conversation id", `{"message":"hi","conversation_id":"` + strings.Repeat("x", 200) + `"}`, &ChatRequest{}, "conversation_id failed max"},
		{"not json", `hello`, &QueryRequest{}, "malformed JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := h.decodeAndValidate(httptest.NewRecorder(), r, tt.dst)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeTrimsFields(t *testing.T) {
	h := newTestHandler()
	var req RecommendationRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_preferences":"  quiet  ","category":" audio "}`))
	require.NoError(t, h.decodeAndValidate(httptest.NewRecorder(), r, &req))
	assert.Equal(t, "quiet", req.UserPreferences)
	assert.Equal(t, "audio", req.Category)
}

func TestRoot(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"message":"Product Recommendation Service is running"}`, rec.Body.String())
}

func TestInvalidInputMapsToBadRequest(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":""}`))
	rec := httptest.NewRecorder()

	err := h.decodeAndValidate(rec, r, &QueryRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	h.writeServiceError(rec, r, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}
