package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/auth"
	"github.com/actuallystonmai/product-recommendation-service/internal/collaborator"
	"github.com/actuallystonmai/product-recommendation-service/internal/config"
	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/generation"
	"github.com/actuallystonmai/product-recommendation-service/internal/handler"
	"github.com/actuallystonmai/product-recommendation-service/internal/metrics"
	"github.com/actuallystonmai/product-recommendation-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "router-secret"

var catalog = []domain.Product{
	{ID: "p1", Name: "Lenovo Ideapad 3", Category: "laptop", Price: 52000, Tags: []string{"coding"}},
	{ID: "p2", Name: "MacBook Air M1", Category: "laptop", Price: 84990, Tags: []string{"battery"}},
	{ID: "a1", Name: "Logitech MX Master 3S", Category: "accessory", Price: 8990, Tags: []string{"mouse"}},
	{ID: "a2", Name: "Keychron K2", Category: "accessory", Price: 7490, Tags: []string{"keyboard"}},
	{ID: "au1", Name: "Sony WH-1000XM5", Category: "audio", Price: 29990, Tags: []string{"travel"}},
}

type env struct {
	productsURL string
	usersURL    string
	gateway     generation.Gateway
	server      config.ServerConfig
	metrics     *metrics.Collector
}

func newEnv(t *testing.T) *env {
	t.Helper()
	products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(catalog)
	}))
	t.Cleanup(products.Close)

	// Unknown users come back as an empty object, like the credential service.
	users := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(users.Close)

	return &env{
		productsURL: products.URL,
		usersURL:    users.URL,
		gateway:     generation.NewMockGateway(),
		server: config.ServerConfig{
			RequestTimeout:     5 * time.Second,
			CORSAllowedOrigins: []string{"*"},
		},
		metrics: metrics.NewCollector(),
	}
}

func (e *env) start(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	svc := service.NewService(service.Deps{
		Verifier: auth.NewTokenVerifier(secret, 0),
		Identity: collaborator.NewIdentityClient(e.usersURL, time.Second, nil, logger),
		Catalog:  collaborator.NewCatalogClient(e.productsURL, time.Second, nil, logger),
		Gateway:  e.gateway,
		Metrics:  e.metrics,
		Logger:   logger,
	}, service.Options{
		CatalogLimit: 20,
		Services:     map[string]string{"product_service": e.productsURL, "user_service": e.usersURL},
	})
	srv := httptest.NewServer(Setup(handler.NewHandler(svc, logger), e.metrics, logger, e.server))
	t.Cleanup(srv.Close)
	return srv
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := auth.NewTokenIssuer(secret).Issue("alice@example.com", "Alice")
	require.NoError(t, err)
	return "Bearer " + tok
}

func post(t *testing.T, url, authHeader, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestRootAndHealth(t *testing.T) {
	e := newEnv(t)
	srv := e.start(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	var root map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&root))
	resp.Body.Close()
	assert.Equal(t, "Product Recommendation Service is running", root["message"])

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["generationAvailable"])
	services := health["services"].(map[string]any)
	assert.Equal(t, e.productsURL, services["product_service"])
	assert.Equal(t, e.usersURL, services["user_service"])
}

func TestRecommendationsAnonymousMock(t *testing.T) {
	srv := newEnv(t).start(t)

	resp, body := post(t, srv.URL+"/recommendations", bearer(t), `{"user_preferences":"coding"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	recs := body["recommendations"].([]any)
	require.Len(t, recs, 3)
	assert.Equal(t, false, body["personalized"])
	for i, want := range []float64{0.85, 0.75, 0.65} {
		rec := recs[i].(map[string]any)
		assert.Equal(t, want, rec["confidence_score"])
		assert.NotEmpty(t, rec["name"])
	}
}

func TestRecommendationsUnauthorized(t *testing.T) {
	srv := newEnv(t).start(t)

	resp, body := post(t, srv.URL+"/recommendations", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", body["error"])
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))

	resp, body = post(t, srv.URL+"/recommendations", "Bearer abc.def.ghi", `{}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", body["error"])
}

func TestTokenCheckedBeforeBody(t *testing.T) {
	srv := newEnv(t).start(t)

	for _, path := range []string{"/recommendations", "/chat"} {
		resp, body := post(t, srv.URL+path, "", `{"budget_max": `)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "invalid_token", body["error"], path)

		resp, _ = post(t, srv.URL+path, "Bearer not.a.token", `{"message": 42}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestRecommendationsCatalogRefused(t *testing.T) {
	e := newEnv(t)
	closed := httptest.NewServer(http.NotFoundHandler())
	e.productsURL = closed.URL
	closed.Close()
	srv := e.start(t)

	resp, body := post(t, srv.URL+"/recommendations", bearer(t), `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "catalog_unavailable", body["error"])

	resp, _ = post(t, srv.URL+"/query", "", `{"query":"laptops?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRecommendationsInvalidBody(t *testing.T) {
	srv := newEnv(t).start(t)

	tests := []struct {
		name string
		body string
	}{
		{"negative budget", `{"budget_max": -1}`},
		{"blank previous order", `{"previous_orders": ["p1", " "]}`},
		{"malformed json", `{"user_preferences": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv.URL+"/recommendations", bearer(t), tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "invalid_request", body["error"])
		})
	}
}

type slowCompleter struct{}

func (slowCompleter) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
func (slowCompleter) Name() string { return "slow" }

func TestRecommendationsLiveTimeout(t *testing.T) {
	e := newEnv(t)
	breaker := generation.NewBreaker(generation.BreakerConfig{Name: "test"}, zap.NewNop())
	e.gateway = generation.NewLiveGateway(slowCompleter{}, 20*time.Millisecond, breaker, e.metrics, zap.NewNop())
	srv := e.start(t)

	resp, body := post(t, srv.URL+"/recommendations", bearer(t), `{}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "generation_unavailable", body["error"])
	assert.Contains(t, body["message"], "GenerationError.Unavailable")
	assert.NotContains(t, body, "recommendations")
}

func TestQuery(t *testing.T) {
	srv := newEnv(t).start(t)

	resp, body := post(t, srv.URL+"/query", "", `{"query":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = post(t, srv.URL+"/query", "", `{"query":"quiet headphones","context":{"budget":30000}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["answer"], "quiet headphones")
	assert.Len(t, body["products"], len(catalog))
}

func TestChat(t *testing.T) {
	srv := newEnv(t).start(t)

	resp, _ := post(t, srv.URL+"/chat", "", `{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := post(t, srv.URL+"/chat", bearer(t), `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "conv-alice@example.com", body["conversation_id"])

	resp, body = post(t, srv.URL+"/chat", bearer(t), `{"message":"hi","conversation_id":"c-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "c-1", body["conversation_id"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newEnv(t).start(t)
	post(t, srv.URL+"/query", "", `{"query":"x"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `recommendation_http_requests_total{method="POST",route="/query",status="200"} 1`)
	assert.Contains(t, string(raw), `recommendation_pipeline_outcomes_total{pipeline="query",state="generated"} 1`)
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t)
	e.server.RateLimitRequests = 1
	e.server.RateLimitWindow = time.Minute
	srv := e.start(t)

	resp, _ := post(t, srv.URL+"/query", "", `{"query":"x"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := post(t, srv.URL+"/query", "", `{"query":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate_limited", body["error"])

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newEnv(t).start(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/query", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://frontend.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
