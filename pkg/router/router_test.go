package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"influencer-platform/backend/internal/storage"
	"influencer-platform/backend/internal/testutil"
	"influencer-platform/backend/pkg/config"
	"influencer-platform/backend/pkg/di"
	"influencer-platform/backend/pkg/health"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, store *storage.MemoryStore) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	obs, err := observability.Setup(observability.Config{ServiceName: "influencerd-test", MetricsEnabled: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	container, err := di.New(context.Background(), di.Deps{
		DB:            testutil.NewDB(t),
		Store:         store,
		Observability: obs,
		Logger:        logger.Nop(),
	}, nil)
	require.NoError(t, err)

	cfg := config.Load()
	cfg.Server.Version = "1.2.3"
	r := New(container, cfg)
	r.SetupRoutes()
	return r
}

func serve(r *Router, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthRoute(t *testing.T) {
	store := storage.NewMemoryStore()
	r := newTestRouter(t, store)

	// nothing has run yet, so critical components report down
	w := serve(r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(r, "/health?fresh=true")
	assert.Equal(t, http.StatusOK, w.Code)
	var report health.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.Healthy)
	assert.Equal(t, health.StatusUp, report.Components["schema"].Status)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthRouteReportsStorageOutage(t *testing.T) {
	store := storage.NewMemoryStore()
	r := newTestRouter(t, store)
	store.Err = assert.AnError

	w := serve(r, "/health?fresh=true")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"storage"`)
}

func TestMetricsRoute(t *testing.T) {
	r := newTestRouter(t, storage.NewMemoryStore())

	_, err := r.Container.InfluencerService.GetByID(context.Background(), "ghost")
	require.Error(t, err)

	w := serve(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "influencer_operations_total")
}

func TestVersionAndUnknownRoute(t *testing.T) {
	r := newTestRouter(t, storage.NewMemoryStore())

	w := serve(r, "/version")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)

	w = serve(r, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ROUTE_NOT_FOUND")
}
