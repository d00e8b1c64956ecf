package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-indexer/internal/indexer"
	"media-indexer/internal/memory"
	"media-indexer/internal/startup"
)

type fixedStatus struct {
	st indexer.Status
}

func (f fixedStatus) Status() indexer.Status { return f.st }

func running() fixedStatus {
	return fixedStatus{st: indexer.Status{
		RunID:   "run-1",
		State:   indexer.StateProcessing.String(),
		Root:    "/media",
		Workers: 4,
		Progress: indexer.Snapshot{
			Discovered: 40,
			Processed:  10,
			Succeeded:  9,
			Skipped:    1,
		},
	}}
}

func serve(t *testing.T, h *Handlers, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := serve(t, New(running(), nil), http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, statusHealthy, resp.Status)
	assert.Equal(t, "processing", resp.State)
	assert.Equal(t, startup.Version, resp.Version)
	assert.Positive(t, resp.NumCPU)
}

func TestHealthCheckDegradedAfterFatalError(t *testing.T) {
	st := running()
	st.st.State = indexer.StateFatalError.String()

	rec := serve(t, New(st, nil), http.MethodGet, "/healthz")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, statusDegraded, resp.Status)
}

func TestHeadRequestsHaveNoBody(t *testing.T) {
	for _, path := range []string{"/healthz", "/livez"} {
		rec := serve(t, New(running(), nil), http.MethodHead, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Body.String(), path)
	}
}

func TestLivenessCheck(t *testing.T) {
	rec := serve(t, New(running(), nil), http.MethodGet, "/livez")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}

func TestGetStatus(t *testing.T) {
	rec := serve(t, New(running(), nil), http.MethodGet, "/status")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body["run_id"])
	assert.Equal(t, "processing", body["state"])
	assert.InDelta(t, 25.0, body["percent"], 0.001)
	assert.NotContains(t, body, "memory")

	progress, ok := body["progress"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 9, progress["succeeded"], 0)
}

func TestGetStatusIncludesMemoryWhenLimited(t *testing.T) {
	cfg := memory.DefaultConfig()
	cfg.MemoryLimitBytes = 1 << 30
	mon := memory.NewMonitor(cfg)

	rec := serve(t, New(running(), mon), http.MethodGet, "/status")

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Memory)
	assert.Equal(t, int64(1<<30), resp.Memory.LimitBytes)
	assert.False(t, resp.Memory.Paused)
}

func TestGetVersion(t *testing.T) {
	rec := serve(t, New(running(), nil), http.MethodGet, "/version")

	require.Equal(t, http.StatusOK, rec.Code)
	var info startup.BuildInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, startup.Version, info.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, New(running(), nil), http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(t, New(running(), nil), http.MethodPost, "/status")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerListenAndShutdown(t *testing.T) {
	srv, err := Listen("127.0.0.1:0", New(running(), nil))
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr() + "/livez")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestListenRejectsBadAddress(t *testing.T) {
	_, err := Listen("not-an-address", New(running(), nil))
	assert.Error(t, err)
}
