package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataview/marketgraph/pkg/logging"
	"github.com/strataview/marketgraph/pkg/metrics"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(DefaultConfig(), logging.NewNopLogger(), metrics.NewRegistry())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// bridgeGraphRequest is the two-triangle bridge graph as a wire payload.
func bridgeGraphRequest(algorithm string) map[string]any {
	return map[string]any{
		"algorithm": algorithm,
		"graph": map[string]any{
			"nodes": []string{"a", "b", "c", "d", "e", "f"},
			"edges": []map[string]any{
				{"from": "a", "to": "b"}, {"from": "b", "to": "c"}, {"from": "a", "to": "c"},
				{"from": "d", "to": "e"}, {"from": "e", "to": "f"}, {"from": "d", "to": "f"},
				{"from": "c", "to": "d"},
			},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var health HealthResponse
	decodeBody(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.NotEmpty(t, health.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalyzeLouvain(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyze", bridgeGraphRequest("louvain"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out AnalyzeResponse
	decodeBody(t, resp, &out)

	assert.Equal(t, "louvain", out.Algorithm)
	assert.NotEmpty(t, out.Time)

	results, ok := out.Results.(map[string]any)
	require.True(t, ok, "expected a result object")
	assert.Equal(t, float64(2), results["communityCount"])
	assert.Greater(t, results["modularity"].(float64), 0.3)
}

func TestAnalyzeEveryAlgorithm(t *testing.T) {
	ts := newTestServer(t)

	for _, algorithm := range []string{
		"louvain", "girvan_newman", "label_propagation",
		"hierarchical", "components", "similarity", "betweenness",
	} {
		t.Run(algorithm, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/analyze", bridgeGraphRequest(algorithm))
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestAnalyzeParameterPassing(t *testing.T) {
	ts := newTestServer(t)

	req := bridgeGraphRequest("louvain")
	req["parameters"] = map[string]any{"resolution": 2.0, "iterations": 50}

	resp := postJSON(t, ts.URL+"/analyze", req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"unknown algorithm", bridgeGraphRequest("kmeans")},
		{"missing graph", map[string]any{"algorithm": "louvain"}},
		{"bad resolution", func() map[string]any {
			r := bridgeGraphRequest("louvain")
			r["parameters"] = map[string]any{"resolution": 99.0}
			return r
		}()},
		{"unknown edge endpoint", map[string]any{
			"algorithm": "louvain",
			"graph": map[string]any{
				"nodes": []string{"a"},
				"edges": []map[string]any{{"from": "a", "to": "ghost"}},
			},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/analyze", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp ErrorResponse
			decodeBody(t, resp, &errResp)
			assert.NotEmpty(t, errResp.Message)
		})
	}
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/analyze")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMarketEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := bridgeGraphRequest("louvain")
	delete(body, "algorithm") // defaults to louvain

	resp := postJSON(t, ts.URL+"/analyze/market", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot map[string]any
	decodeBody(t, resp, &snapshot)

	assert.NotEmpty(t, snapshot["reportId"])
	assert.NotEmpty(t, snapshot["structure"])
	assert.Equal(t, float64(2), snapshot["communityCount"])
	players, ok := snapshot["dominantPlayers"].([]any)
	require.True(t, ok)
	assert.Len(t, players, 2)
}

func TestTrendEndpoint(t *testing.T) {
	ts := newTestServer(t)

	graphPayload := map[string]any{
		"nodes": []string{"a", "b", "c", "d"},
		"edges": []map[string]any{
			{"from": "a", "to": "b"}, {"from": "c", "to": "d"},
		},
	}
	body := map[string]any{
		"snapshots": []map[string]any{
			{"timestamp": "2026-01", "graph": graphPayload},
			{"timestamp": "2026-02", "graph": graphPayload},
		},
	}

	resp := postJSON(t, ts.URL+"/analyze/trend", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	decodeBody(t, resp, &out)

	series, ok := out["series"].([]any)
	require.True(t, ok)
	require.Len(t, series, 2)

	first := series[0].(map[string]any)
	assert.Equal(t, "2026-01", first["timestamp"])
}

func TestTrendRejectsEmptySeries(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyze/trend", map[string]any{"snapshots": []any{}})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "client-supplied-id")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "client-supplied-id", resp.Header.Get(RequestIDHeader))
}

func TestCORSHeaders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CORSAllowedOrigins = []string{"https://app.example.com"}
	s := NewServer(cfg, logging.NewNopLogger(), metrics.NewRegistry())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/analyze", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	// unlisted origins get nothing back
	req2, err := http.NewRequest(http.MethodOptions, ts.URL+"/analyze", nil)
	require.NoError(t, err)
	req2.Header.Set("Origin", "https://evil.example.com")

	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("MARKETGRAPH_PORT", "9999")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, 9999, cfg.Port)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.yaml")
		assert.Error(t, err)
	})
}
