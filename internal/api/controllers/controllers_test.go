package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "learnez/internal/models/domain_models"
	"learnez/internal/services"
	"learnez/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeQuizService struct {
	beginErr  error
	answerErr error
	gotUser   string
	gotAnswer string
}

func (f *fakeQuizService) BeginAttempt(_ context.Context, userID, materialID, query string) (string, error) {
	f.gotUser = userID
	return "att-1", f.beginErr
}

func (f *fakeQuizService) RecordAnswer(_ context.Context, userID, attemptID, answer string) (*dm.AnswerResult, error) {
	f.gotUser, f.gotAnswer = userID, answer
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	now := time.Now()
	return &dm.AnswerResult{WasCorrect: true, Attempt: &dm.Attempt{
		ID:        attemptID,
		StartedAt: now,
		QuestionHistory: []dm.QuestionAttempt{
			{Question: dm.Question{Question: "q1", Answer: "yes"}, UserAnswer: &answer, AnsweredAt: &now},
			{Question: dm.Question{Question: "q2", Answer: "secret"}},
		},
	}}, nil
}

func (f *fakeQuizService) GetAttempt(_ context.Context, userID, attemptID string) (*dm.Attempt, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeQuizService) Wait() {}

type fakeRoadmapService struct {
	gotInput services.BuildRoadmapInput
}

func (f *fakeRoadmapService) Build(context.Context, string, services.BuildRoadmapInput) (*dm.Roadmap, error) {
	return nil, errors.New("unused")
}

func (f *fakeRoadmapService) StartBuild(_ context.Context, _ string, in services.BuildRoadmapInput) (string, error) {
	f.gotInput = in
	return "rm-1", nil
}

func (f *fakeRoadmapService) GetRoadmap(_ context.Context, userID, id string) (*dm.Roadmap, error) {
	return &dm.Roadmap{ID: id, CreatorID: userID, Status: dm.RoadmapStatusReady}, nil
}

func (f *fakeRoadmapService) Wait() {}

type fakeRetriever struct {
	gotLimit int
}

func (f *fakeRetriever) Retrieve(_ context.Context, materialID, query string, limit int) ([]dm.Passage, error) {
	f.gotLimit = limit
	return []dm.Passage{{ID: "c1", Content: "text"}}, nil
}

func newRouter(register func(r *gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	g := r.Group("/", func(c *gin.Context) {
		c.Set(utils.ContextUserIDKey, "u1")
		c.Next()
	})
	register(g)
	return r
}

func doJSON(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, utils.APIResponse) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp utils.APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func quizRouter(svc services.QuizServiceInterface) *gin.Engine {
	ctrl := NewQuizController(svc)
	return newRouter(func(g *gin.RouterGroup) {
		g.POST("/quiz/begin", ctrl.BeginAttempt)
		g.POST("/quiz/:attemptId/answer", ctrl.RecordAnswer)
		g.GET("/quiz/:attemptId", ctrl.GetAttempt)
	})
}

func TestBeginAttemptReturnsID(t *testing.T) {
	svc := &fakeQuizService{}
	rec, resp := doJSON(quizRouter(svc), http.MethodPost, "/quiz/begin", map[string]string{"material_id": "m1", "initial_query": "cells"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "att-1", resp.Data.(map[string]any)["attempt_id"])
	assert.Equal(t, "u1", svc.gotUser)
}

func TestBeginAttemptRejectsMissingFields(t *testing.T) {
	rec, _ := doJSON(quizRouter(&fakeQuizService{}), http.MethodPost, "/quiz/begin", map[string]string{"material_id": "m1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{utils.ErrGeneration, http.StatusBadGateway},
		{utils.ErrAttemptCompleted, http.StatusBadRequest},
		{utils.ErrNotFound, http.StatusNotFound},
		{utils.ErrConflict, http.StatusConflict},
	}
	for _, tt := range tests {
		rec, resp := doJSON(quizRouter(&fakeQuizService{answerErr: tt.err}), http.MethodPost, "/quiz/a1/answer", map[string]string{"answer": "x"})
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
		assert.Equal(t, "error", resp.Status)
	}
}

func TestRecordAnswerHidesPendingAnswer(t *testing.T) {
	svc := &fakeQuizService{}
	rec, _ := doJSON(quizRouter(svc), http.MethodPost, "/quiz/a1/answer", map[string]string{"answer": "yes"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yes", svc.gotAnswer)
	assert.Contains(t, rec.Body.String(), `"was_correct":true`)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestGetAttemptNotFound(t *testing.T) {
	rec, _ := doJSON(quizRouter(&fakeQuizService{}), http.MethodGet, "/quiz/a1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRoadmapStartsBuild(t *testing.T) {
	svc := &fakeRoadmapService{}
	ctrl := NewRoadmapController(svc)
	r := newRouter(func(g *gin.RouterGroup) {
		g.POST("/roadmaps", ctrl.CreateRoadmap)
		g.GET("/roadmaps/:roadmapId", ctrl.GetRoadmap)
	})

	rec, resp := doJSON(r, http.MethodPost, "/roadmaps", map[string]any{
		"material_id":       "m1",
		"requested_content": "rust",
		"config":            map[string]any{"max_length": 3},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rm-1", resp.Data.(map[string]any)["roadmap_id"])
	require.NotNil(t, svc.gotInput.Config)
	assert.Equal(t, 3, svc.gotInput.Config.MaxLength)

	rec, _ = doJSON(r, http.MethodGet, "/roadmaps/rm-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"READY"`)
}

func TestGroundingValidatesLimit(t *testing.T) {
	retriever := &fakeRetriever{}
	ctrl := NewMaterialController(retriever)
	r := newRouter(func(g *gin.RouterGroup) {
		g.GET("/materials/:materialId/grounding", ctrl.GetGroundingData)
	})

	rec, _ := doJSON(r, http.MethodGet, "/materials/m1/grounding?q=cells&limit=50", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(r, http.MethodGet, "/materials/m1/grounding", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := doJSON(r, http.MethodGet, "/materials/m1/grounding?q=cells&limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, retriever.gotLimit)
	assert.Equal(t, "materials/m1/embeddings", resp.Data.(map[string]any)["collection"])
}

type pingErr struct{ err error }

func (p pingErr) PingContext(context.Context) error { return p.err }

func TestHealthz(t *testing.T) {
	ok := NewHealthController(pingErr{})
	down := NewHealthController(pingErr{err: errors.New("refused")})
	r := gin.New()
	r.GET("/ok", ok.Healthz)
	r.GET("/down", down.Healthz)

	rec, _ := doJSON(r, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(r, http.MethodGet, "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
