package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnez/internal/api/controllers"
	"learnez/internal/infra"
	"learnez/internal/realtime"
	"learnez/pkg/logger"
	"learnez/pkg/middleware"
	"learnez/pkg/utils"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier, err := utils.NewTokenVerifier("test-secret", time.Hour)
	require.NoError(t, err)

	return ProvideRouter(routeParams{
		Config:   &infra.Config{AppEnv: "test"},
		Log:      logger.NewNop(),
		Verifier: verifier,
		Quiz:     controllers.NewQuizController(nil),
		Roadmap:  controllers.NewRoadmapController(nil),
		Material: controllers.NewMaterialController(nil),
		Events:   controllers.NewEventsController(realtime.NewSSEHub(logger.NewNop())),
		Health:   controllers.NewHealthController(nil),
	})
}

func TestHealthzIsPublic(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceIDHeader))
}

func TestAPIRoutesRequireToken(t *testing.T) {
	r := testRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/quiz/begin"},
		{http.MethodPost, "/quiz/a1/answer"},
		{http.MethodGet, "/quiz/a1"},
		{http.MethodPost, "/roadmaps"},
		{http.MethodGet, "/roadmaps/r1"},
		{http.MethodGet, "/materials/m1/grounding?q=x"},
		{http.MethodGet, "/events"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}
