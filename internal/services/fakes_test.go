package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	dbm "learnez/internal/models/db_models"
	dm "learnez/internal/models/domain_models"
	"learnez/internal/realtime"
	"learnez/internal/repositories"
	"learnez/pkg/utils"
)

type memAttemptRepo struct {
	mu    sync.Mutex
	rows  map[string]*dm.Attempt
	saves int
}

func newMemAttemptRepo() *memAttemptRepo {
	return &memAttemptRepo{rows: map[string]*dm.Attempt{}}
}

func (r *memAttemptRepo) Create(_ context.Context, a *dm.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	a.Version = 1
	r.rows[a.ID] = a.Clone()
	return nil
}

func (r *memAttemptRepo) Get(_ context.Context, id string) (*dm.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: attempt %s", utils.ErrNotFound, id)
	}
	return a.Clone(), nil
}

func (r *memAttemptRepo) Save(_ context.Context, a *dm.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[a.ID]
	if !ok {
		return utils.ErrNotFound
	}
	if cur.Version != a.Version {
		return utils.ErrConflict
	}
	a.Version++
	r.rows[a.ID] = a.Clone()
	r.saves++
	return nil
}

func (r *memAttemptRepo) stored(id string) *dm.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].Clone()
}

type memRoadmapRepo struct {
	mu       sync.Mutex
	roadmaps map[string]*dm.Roadmap
	failOn   int
}

func newMemRoadmapRepo() *memRoadmapRepo {
	return &memRoadmapRepo{roadmaps: map[string]*dm.Roadmap{}}
}

func (r *memRoadmapRepo) CreateRoadmap(_ context.Context, rm *dm.Roadmap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm.ID = uuid.NewString()
	rm.CreatedAt = time.Now()
	if rm.Status == "" {
		rm.Status = dm.RoadmapStatusBuilding
	}
	cp := *rm
	cp.Milestones = nil
	r.roadmaps[rm.ID] = &cp
	return nil
}

func (r *memRoadmapRepo) AppendMilestone(_ context.Context, roadmapID string, prevID *string, m *dm.RoadmapMilestone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.roadmaps[roadmapID]
	if !ok {
		return utils.ErrNotFound
	}
	if r.failOn > 0 && len(rm.Milestones)+1 == r.failOn {
		return fmt.Errorf("%w: disk full", utils.ErrDatabaseError)
	}
	m.ID = uuid.NewString()
	if prevID != nil {
		linked := false
		for i := range rm.Milestones {
			if rm.Milestones[i].ID == *prevID {
				if rm.Milestones[i].NextMilestoneID != nil {
					return utils.ErrConflict
				}
				id := m.ID
				rm.Milestones[i].NextMilestoneID = &id
				linked = true
			}
		}
		if !linked {
			return utils.ErrConflict
		}
	}
	rm.Milestones = append(rm.Milestones, *m)
	return nil
}

func (r *memRoadmapRepo) UpdateStatus(_ context.Context, roadmapID string, status dm.RoadmapStatus, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.roadmaps[roadmapID]
	if !ok {
		return utils.ErrNotFound
	}
	rm.Status = status
	rm.FailureReason = reason
	return nil
}

func (r *memRoadmapRepo) GetRoadmap(_ context.Context, roadmapID string) (*dm.Roadmap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.roadmaps[roadmapID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *rm
	cp.Milestones = append([]dm.RoadmapMilestone(nil), rm.Milestones...)
	sort.Slice(cp.Milestones, func(i, j int) bool { return cp.Milestones[i].Position < cp.Milestones[j].Position })
	return &cp, nil
}

type memMaterialRepo struct {
	mu        sync.Mutex
	materials map[string]*dbm.Material
	hits      []repositories.ChunkHit
	searches  int
	searchErr error
}

func (r *memMaterialRepo) GetMaterial(_ context.Context, id string) (*dbm.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.materials[id]; ok {
		return m, nil
	}
	return nil, utils.ErrNotFound
}

func (r *memMaterialRepo) CreateMaterial(context.Context, *dbm.Material) error { return nil }
func (r *memMaterialRepo) CreateChunks(context.Context, []dbm.MaterialChunk) error {
	return nil
}

func (r *memMaterialRepo) SearchChunks(_ context.Context, _ string, _ pgvector.Vector, limit int) ([]repositories.ChunkHit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches++
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if limit < len(r.hits) {
		return r.hits[:limit], nil
	}
	return r.hits, nil
}

type stubRetriever struct {
	passages []dm.Passage
	err      error
	queries  []string
}

func (s *stubRetriever) Retrieve(_ context.Context, _, query string, _ int) ([]dm.Passage, error) {
	s.queries = append(s.queries, query)
	return s.passages, s.err
}

// funcQuestionGenerator answers through fn and records every input.
type funcQuestionGenerator struct {
	mu     sync.Mutex
	fn     func(in QuestionInput) (dm.Question, error)
	inputs []QuestionInput
}

func (g *funcQuestionGenerator) GenerateQuestion(_ context.Context, in QuestionInput) (dm.Question, error) {
	g.mu.Lock()
	g.inputs = append(g.inputs, in)
	fn := g.fn
	g.mu.Unlock()
	return fn(in)
}

func (g *funcQuestionGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inputs)
}

// levelQuestion builds a deterministic question whose correct answer is
// choice A.
func levelQuestion(in QuestionInput) dm.Question {
	return dm.Question{
		Question: fmt.Sprintf("level %d question #%d", in.Difficulty, len(in.ExcludeQuestions)),
		Answer:   "right",
		Choices:  dm.Choices{A: "right", B: "wrong 1", C: "wrong 2", D: "wrong 3"},
		Level:    in.Difficulty,
		MaxScore: 10, MinScore: 0, PassingScore: 5,
	}
}

type recordedEvent struct {
	userID string
	event  realtime.SSEEvent
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *recordingEmitter) Emit(_ context.Context, userID string, event realtime.SSEEvent, _ any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{userID: userID, event: event})
}

func (e *recordingEmitter) count(event realtime.SSEEvent) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.event == event {
			n++
		}
	}
	return n
}
