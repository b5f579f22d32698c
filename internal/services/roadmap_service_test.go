package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "learnez/internal/models/db_models"
	dm "learnez/internal/models/domain_models"
	"learnez/internal/realtime"
	"learnez/pkg/logger"
	"learnez/pkg/utils"
)

type funcMilestoneGenerator struct {
	mu     sync.Mutex
	fn     func(in MilestoneInput) (dm.MilestoneDraft, error)
	inputs []MilestoneInput
}

func (g *funcMilestoneGenerator) GenerateMilestone(_ context.Context, in MilestoneInput) (dm.MilestoneDraft, error) {
	g.mu.Lock()
	g.inputs = append(g.inputs, in)
	g.mu.Unlock()
	return g.fn(in)
}

// chainOf ends the chain after k milestones.
func chainOf(k int) func(MilestoneInput) (dm.MilestoneDraft, error) {
	return func(in MilestoneInput) (dm.MilestoneDraft, error) {
		if in.Index >= k {
			return dm.MilestoneDraft{Label: "  "}, nil
		}
		return dm.MilestoneDraft{Label: fmt.Sprintf("Step %d", in.Index), Description: fmt.Sprintf("covers part %d", in.Index)}, nil
	}
}

type funcCheckpointGenerator struct {
	fn func(in CheckpointInput) ([]dm.CheckpointDraft, error)
}

func (g *funcCheckpointGenerator) GenerateCheckpoints(_ context.Context, in CheckpointInput) ([]dm.CheckpointDraft, error) {
	return g.fn(in)
}

func nCheckpoints(n int) func(CheckpointInput) ([]dm.CheckpointDraft, error) {
	return func(in CheckpointInput) ([]dm.CheckpointDraft, error) {
		out := make([]dm.CheckpointDraft, n)
		for i := range out {
			out[i] = dm.CheckpointDraft{Label: fmt.Sprintf("%s / %d", in.MilestoneName, i), Description: "do it"}
		}
		if n > 0 {
			out[0].SourceID = "chunk-1"
			out[0].SourceSnippet = "snippet"
		}
		return out, nil
	}
}

type roadmapFixture struct {
	svc         *RoadmapService
	repo        *memRoadmapRepo
	milestones  *funcMilestoneGenerator
	checkpoints *funcCheckpointGenerator
	emitter     *recordingEmitter
}

func newRoadmapFixture(milestones func(MilestoneInput) (dm.MilestoneDraft, error), checkpoints func(CheckpointInput) ([]dm.CheckpointDraft, error)) *roadmapFixture {
	f := &roadmapFixture{
		repo:        newMemRoadmapRepo(),
		milestones:  &funcMilestoneGenerator{fn: milestones},
		checkpoints: &funcCheckpointGenerator{fn: checkpoints},
		emitter:     &recordingEmitter{},
	}
	materials := &memMaterialRepo{materials: map[string]*dbm.Material{"m1": {Title: "Cell Biology"}}}
	f.svc = NewRoadmapService(f.repo, materials, f.milestones, f.checkpoints, f.emitter, dm.DefaultRoadmapGenerationConfig(), 0, logger.NewNop()).(*RoadmapService)
	return f
}

func TestBuildProducesLinkedChain(t *testing.T) {
	f := newRoadmapFixture(chainOf(3), nCheckpoints(5))

	rm, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: "m1", RequestedContent: "learn cells"})
	require.NoError(t, err)

	assert.Equal(t, dm.RoadmapStatusReady, rm.Status)
	assert.Equal(t, "Cell Biology", rm.Label)
	require.Len(t, rm.Milestones, 3)
	for i, m := range rm.Milestones {
		assert.Equal(t, i, m.Position)
		assert.Len(t, m.Content, 5)
	}

	node := rm.StartNode()
	visited := 0
	for node != nil {
		visited++
		node = rm.Next(node)
	}
	assert.Equal(t, 3, visited)
	assert.Nil(t, rm.Milestones[2].NextMilestoneID)
	assert.Equal(t, &rm.Milestones[0], rm.Previous(&rm.Milestones[1]))

	stored, err := f.svc.GetRoadmap(context.Background(), "u1", rm.ID)
	require.NoError(t, err)
	assert.Equal(t, dm.RoadmapStatusReady, stored.Status)
	require.Len(t, stored.Milestones, 3)
	assert.Equal(t, rm.Milestones[1].ID, *stored.Milestones[0].NextMilestoneID)

	assert.Equal(t, 3, f.emitter.count(realtime.EventMilestoneCreated))
	assert.Equal(t, 1, f.emitter.count(realtime.EventRoadmapReady))
}

func TestBuildPassesPriorDescriptionsInOrder(t *testing.T) {
	f := newRoadmapFixture(chainOf(3), nCheckpoints(1))

	_, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: "m1", RequestedContent: "goal"})
	require.NoError(t, err)

	require.Len(t, f.milestones.inputs, 4)
	assert.Empty(t, f.milestones.inputs[0].PreviousDescriptions)
	assert.Equal(t, []string{"covers part 0", "covers part 1"}, f.milestones.inputs[2].PreviousDescriptions)
	last := f.milestones.inputs[3]
	assert.Equal(t, 3, last.Index)
	assert.Equal(t, 10, last.MaxCount)
	assert.Equal(t, 5, last.MinCount)
	assert.Equal(t, "m1", last.MaterialID)
	assert.Equal(t, "goal", last.UserGoal)
	assert.Equal(t, "vi", last.Locale)
}

func TestCheckpointsAreDecorated(t *testing.T) {
	f := newRoadmapFixture(chainOf(1), nCheckpoints(2))

	rm, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: "m1"})
	require.NoError(t, err)

	cps := rm.Milestones[0].Content
	require.Len(t, cps, 2)
	for _, cp := range cps {
		assert.Equal(t, dm.CheckpointNotStarted, cp.Status)
		require.Len(t, cp.ReferenceMaterial, 1)
		assert.Equal(t, "materials/m1/embeddings", cp.ReferenceMaterial[0].ReferenceCollection)
	}
	assert.Equal(t, "chunk-1", cps[0].ReferenceMaterial[0].ReferenceID)
	assert.Equal(t, "snippet", cps[0].ReferenceMaterial[0].ReferenceContent)
	assert.Equal(t, "m1", cps[1].ReferenceMaterial[0].ReferenceID)
}

func TestCheckpointsAreTruncatedToMax(t *testing.T) {
	f := newRoadmapFixture(chainOf(1), nCheckpoints(8))

	rm, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{
		MaterialID: "m1",
		Config:     &dm.RoadmapGenerationConfig{MilestoneMinLength: 2, MilestoneMaxLength: 3},
	})
	require.NoError(t, err)

	assert.Len(t, rm.Milestones[0].Content, 3)
}

func TestBuildStopsAtMaxLength(t *testing.T) {
	f := newRoadmapFixture(func(in MilestoneInput) (dm.MilestoneDraft, error) {
		return dm.MilestoneDraft{Label: "again", Description: "more"}, nil
	}, nCheckpoints(1))

	rm, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{
		MaterialID: "m1",
		Config:     &dm.RoadmapGenerationConfig{MaxLength: 4, MinLength: 2},
	})
	require.NoError(t, err)

	assert.Len(t, rm.Milestones, 4)
	assert.Len(t, f.milestones.inputs, 4)
	assert.Equal(t, dm.RoadmapStatusReady, rm.Status)
}

func TestBuildWithoutFirstMilestoneFails(t *testing.T) {
	f := newRoadmapFixture(chainOf(0), nCheckpoints(1))

	_, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: "m1"})

	assert.ErrorIs(t, err, utils.ErrGeneration)
	for _, rm := range f.repo.roadmaps {
		assert.Equal(t, dm.RoadmapStatusFailed, rm.Status)
		assert.Empty(t, rm.Milestones)
	}
	assert.Equal(t, 1, f.emitter.count(realtime.EventRoadmapFailed))
}

func TestGeneratorFailureKeepsPersistedNodes(t *testing.T) {
	f := newRoadmapFixture(func(in MilestoneInput) (dm.MilestoneDraft, error) {
		if in.Index == 2 {
			return dm.MilestoneDraft{}, errors.New("quota exceeded")
		}
		return chainOf(5)(in)
	}, nCheckpoints(1))

	_, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: "m1"})

	require.ErrorIs(t, err, utils.ErrGeneration)
	require.Len(t, f.repo.roadmaps, 1)
	for _, rm := range f.repo.roadmaps {
		assert.Equal(t, dm.RoadmapStatusFailed, rm.Status)
		assert.Len(t, rm.Milestones, 2)
		assert.NotEmpty(t, rm.FailureReason)
	}
}

func TestStoreFailureAbortsBuild(t *testing.T) {
	f := newRoadmapFixture(chainOf(5), nCheckpoints(1))
	f.repo.failOn = 2

	_, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: "m1"})

	assert.ErrorIs(t, err, utils.ErrDatabaseError)
}

func TestBuildValidatesInput(t *testing.T) {
	f := newRoadmapFixture(chainOf(1), nCheckpoints(1))

	_, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: " "})
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)

	_, err = f.svc.StartBuild(context.Background(), "", BuildRoadmapInput{MaterialID: "m1"})
	assert.ErrorIs(t, err, utils.ErrUnauthenticated)

	assert.Empty(t, f.repo.roadmaps)
}

func TestStartBuildRunsInBackground(t *testing.T) {
	f := newRoadmapFixture(chainOf(2), nCheckpoints(1))
	ctx, cancel := context.WithCancel(context.Background())

	id, err := f.svc.StartBuild(ctx, "u1", BuildRoadmapInput{MaterialID: "unknown", RequestedContent: "rust basics"})
	require.NoError(t, err)
	cancel()
	f.svc.Wait()

	rm, err := f.svc.GetRoadmap(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, dm.RoadmapStatusReady, rm.Status)
	assert.Equal(t, "rust basics", rm.Label)
	assert.Len(t, rm.Milestones, 2)
}

func TestGetRoadmapHidesForeignRoadmaps(t *testing.T) {
	f := newRoadmapFixture(chainOf(1), nCheckpoints(1))
	rm, err := f.svc.Build(context.Background(), "u1", BuildRoadmapInput{MaterialID: "m1"})
	require.NoError(t, err)

	_, err = f.svc.GetRoadmap(context.Background(), "u2", rm.ID)

	assert.ErrorIs(t, err, utils.ErrNotFound)
}
