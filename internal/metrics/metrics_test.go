package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.PipelineOutcome("recommend", "assembled")
	c.CollaboratorFailure("catalog")
	c.ParseDegraded()
	c.ObserveGeneration("bedrock", time.Second, errors.New("boom"))
	c.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	assert.Nil(t, c.Registry())
}

func TestCounters(t *testing.T) {
	c := NewCollector()
	c.PipelineOutcome("recommend", "assembled")
	c.PipelineOutcome("recommend", "assembled")
	c.CollaboratorFailure("catalog")
	c.ParseDegraded()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.pipelineOutcomes.WithLabelValues("recommend", "assembled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.collaboratorFailures.WithLabelValues("catalog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.parseDegradations))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	c := NewCollector()
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/items/{id}", "202")))
}

func TestExportedNames(t *testing.T) {
	c := NewCollector()
	c.ObserveGeneration("gemini", time.Second, nil)
	c.ObserveGeneration("gemini", time.Second, errors.New("quota"))
	c.PipelineOutcome("query", "generated")

	n, err := testutil.GatherAndCount(c.Registry(), "recommendation_generation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per result label")

	n, err = testutil.GatherAndCount(c.Registry(), "recommendation_pipeline_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
