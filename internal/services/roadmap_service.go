package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	dm "learnez/internal/models/domain_models"
	"learnez/internal/models/response_models"
	"learnez/internal/realtime"
	"learnez/internal/repositories"
	"learnez/pkg/logger"
	"learnez/pkg/utils"
)

type BuildRoadmapInput struct {
	MaterialID       string
	RequestedContent string
	Config           *dm.RoadmapGenerationConfig
}

type RoadmapServiceInterface interface {
	// Build generates the whole chain before returning.
	Build(ctx context.Context, userID string, in BuildRoadmapInput) (*dm.Roadmap, error)
	// StartBuild creates the roadmap and builds it in the background.
	StartBuild(ctx context.Context, userID string, in BuildRoadmapInput) (string, error)
	GetRoadmap(ctx context.Context, userID, roadmapID string) (*dm.Roadmap, error)
	Wait()
}

type RoadmapService struct {
	roadmaps     repositories.RoadmapRepository
	materials    repositories.MaterialRepository
	milestones   MilestoneGeneratorInterface
	checkpoints  CheckpointGeneratorInterface
	emitter      realtime.Emitter
	defaults     dm.RoadmapGenerationConfig
	buildTimeout time.Duration
	log          *logger.Logger
	wg           sync.WaitGroup
}

func NewRoadmapService(
	roadmaps repositories.RoadmapRepository,
	materials repositories.MaterialRepository,
	milestones MilestoneGeneratorInterface,
	checkpoints CheckpointGeneratorInterface,
	emitter realtime.Emitter,
	defaults dm.RoadmapGenerationConfig,
	buildTimeout time.Duration,
	log *logger.Logger,
) RoadmapServiceInterface {
	if emitter == nil {
		emitter = realtime.NopEmitter{}
	}
	if buildTimeout <= 0 {
		buildTimeout = 15 * time.Minute
	}
	return &RoadmapService{
		roadmaps:     roadmaps,
		materials:    materials,
		milestones:   milestones,
		checkpoints:  checkpoints,
		emitter:      emitter,
		defaults:     defaults.Merge(nil),
		buildTimeout: buildTimeout,
		log:          log.With("component", "RoadmapService"),
	}
}

func (s *RoadmapService) Build(ctx context.Context, userID string, in BuildRoadmapInput) (*dm.Roadmap, error) {
	roadmap, cfg, err := s.create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.run(ctx, roadmap, cfg); err != nil {
		return nil, err
	}
	return roadmap, nil
}

func (s *RoadmapService) StartBuild(ctx context.Context, userID string, in BuildRoadmapInput) (string, error) {
	roadmap, cfg, err := s.create(ctx, userID, in)
	if err != nil {
		return "", err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.buildTimeout)
		defer cancel()
		_ = s.run(bgCtx, roadmap, cfg)
	}()
	return roadmap.ID, nil
}

func (s *RoadmapService) GetRoadmap(ctx context.Context, userID, roadmapID string) (*dm.Roadmap, error) {
	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}
	roadmap, err := s.roadmaps.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	if roadmap.CreatorID != userID {
		return nil, fmt.Errorf("%w: roadmap %s", utils.ErrNotFound, roadmapID)
	}
	return roadmap, nil
}

func (s *RoadmapService) Wait() {
	s.wg.Wait()
}

func (s *RoadmapService) create(ctx context.Context, userID string, in BuildRoadmapInput) (*dm.Roadmap, dm.RoadmapGenerationConfig, error) {
	cfg := s.defaults.Merge(in.Config)
	if userID == "" {
		return nil, cfg, utils.ErrUnauthenticated
	}
	in.MaterialID = strings.TrimSpace(in.MaterialID)
	in.RequestedContent = strings.TrimSpace(in.RequestedContent)
	if in.MaterialID == "" {
		return nil, cfg, fmt.Errorf("%w: material id is required", utils.ErrInvalidArgument)
	}

	roadmap := &dm.Roadmap{
		Label:            s.label(ctx, in),
		Description:      in.RequestedContent,
		CreatorID:        userID,
		MaterialID:       in.MaterialID,
		RequestedContent: in.RequestedContent,
		Status:           dm.RoadmapStatusBuilding,
		Milestones:       []dm.RoadmapMilestone{},
	}
	if err := s.roadmaps.CreateRoadmap(ctx, roadmap); err != nil {
		return nil, cfg, err
	}
	s.log.Info("roadmap created", "roadmap_id", roadmap.ID, "user_id", userID, "material_id", in.MaterialID, "max_length", cfg.MaxLength)
	return roadmap, cfg, nil
}

// label names the roadmap after its material when the material is known.
func (s *RoadmapService) label(ctx context.Context, in BuildRoadmapInput) string {
	if s.materials != nil {
		if m, err := s.materials.GetMaterial(ctx, in.MaterialID); err == nil && strings.TrimSpace(m.Title) != "" {
			return m.Title
		}
	}
	if in.RequestedContent != "" {
		return in.RequestedContent
	}
	return "Roadmap"
}

// run builds the chain of an already created roadmap and records the final
// status. Persisted nodes stay in place when the build fails.
func (s *RoadmapService) run(ctx context.Context, roadmap *dm.Roadmap, cfg dm.RoadmapGenerationConfig) error {
	ctx, span := tracer.Start(ctx, "roadmap.build")
	defer span.End()
	span.SetAttributes(attribute.String("roadmap_id", roadmap.ID), attribute.Int("max_length", cfg.MaxLength))

	if err := s.buildChain(ctx, roadmap, cfg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		s.fail(ctx, roadmap, err)
		return err
	}

	if err := s.roadmaps.UpdateStatus(ctx, roadmap.ID, dm.RoadmapStatusReady, ""); err != nil {
		s.fail(ctx, roadmap, err)
		return err
	}
	roadmap.Status = dm.RoadmapStatusReady
	span.SetAttributes(attribute.Int("milestones", len(roadmap.Milestones)))
	s.log.Info("roadmap ready", "roadmap_id", roadmap.ID, "milestones", len(roadmap.Milestones))
	s.emitter.Emit(ctx, roadmap.CreatorID, realtime.EventRoadmapReady, roadmap)
	return nil
}

func (s *RoadmapService) buildChain(ctx context.Context, roadmap *dm.Roadmap, cfg dm.RoadmapGenerationConfig) error {
	for index := 0; ; index++ {
		if len(roadmap.Milestones) >= cfg.MaxLength {
			s.log.Warn("roadmap reached max length without an end marker", "roadmap_id", roadmap.ID, "max_length", cfg.MaxLength)
			break
		}

		draft, err := s.milestones.GenerateMilestone(ctx, MilestoneInput{
			PreviousDescriptions: roadmap.Descriptions(),
			Index:                index,
			MaxCount:             cfg.MaxLength,
			MinCount:             cfg.MinLength,
			MaterialID:           roadmap.MaterialID,
			UserGoal:             roadmap.RequestedContent,
			Locale:               cfg.Locale,
		})
		if err != nil {
			return asGenerationError(err)
		}
		if strings.TrimSpace(draft.Label) == "" {
			if index == 0 {
				return fmt.Errorf("%w: no milestones", utils.ErrGeneration)
			}
			break
		}

		node, err := s.buildMilestone(ctx, roadmap, index, draft, cfg)
		if err != nil {
			return err
		}

		var prevID *string
		if n := len(roadmap.Milestones); n > 0 {
			prevID = &roadmap.Milestones[n-1].ID
		}
		if err := s.roadmaps.AppendMilestone(ctx, roadmap.ID, prevID, node); err != nil {
			return err
		}
		if n := len(roadmap.Milestones); n > 0 {
			id := node.ID
			roadmap.Milestones[n-1].NextMilestoneID = &id
		}
		roadmap.Milestones = append(roadmap.Milestones, *node)

		s.log.Debug("milestone appended", "roadmap_id", roadmap.ID, "position", node.Position, "checkpoints", len(node.Content))
		s.emitter.Emit(ctx, roadmap.CreatorID, realtime.EventMilestoneCreated, response_models.MilestoneCreatedEvent{
			RoadmapID: roadmap.ID,
			Milestone: node,
		})
	}

	if len(roadmap.Milestones) < cfg.MinLength {
		s.log.Warn("roadmap shorter than requested minimum", "roadmap_id", roadmap.ID, "milestones", len(roadmap.Milestones), "min_length", cfg.MinLength)
	}
	return nil
}

func (s *RoadmapService) buildMilestone(ctx context.Context, roadmap *dm.Roadmap, position int, draft dm.MilestoneDraft, cfg dm.RoadmapGenerationConfig) (*dm.RoadmapMilestone, error) {
	drafts, err := s.checkpoints.GenerateCheckpoints(ctx, CheckpointInput{
		MilestoneName:        draft.Label,
		MilestoneDescription: draft.Description,
		MaterialID:           roadmap.MaterialID,
		MinCount:             cfg.MilestoneMinLength,
		MaxCount:             cfg.MilestoneMaxLength,
		Locale:               cfg.Locale,
	})
	if err != nil {
		return nil, asGenerationError(err)
	}

	if len(drafts) > cfg.MilestoneMaxLength {
		drafts = drafts[:cfg.MilestoneMaxLength]
	}
	if len(drafts) < cfg.MilestoneMinLength {
		s.log.Warn("milestone has fewer checkpoints than requested", "roadmap_id", roadmap.ID, "position", position, "checkpoints", len(drafts), "min", cfg.MilestoneMinLength)
	}

	content := make([]dm.Checkpoint, 0, len(drafts))
	for _, d := range drafts {
		content = append(content, toCheckpoint(roadmap.MaterialID, d))
	}
	return &dm.RoadmapMilestone{
		Position:    position,
		Label:       strings.TrimSpace(draft.Label),
		Description: strings.TrimSpace(draft.Description),
		Content:     content,
	}, nil
}

func toCheckpoint(materialID string, d dm.CheckpointDraft) dm.Checkpoint {
	refID := d.SourceID
	if refID == "" {
		refID = materialID
	}
	return dm.Checkpoint{
		Label:       d.Label,
		Description: d.Description,
		Status:      dm.CheckpointNotStarted,
		ReferenceMaterial: []dm.Reference{{
			ReferenceID:         refID,
			ReferenceCollection: dm.MaterialCollection(materialID),
			ReferenceContent:    d.SourceSnippet,
		}},
	}
}

func (s *RoadmapService) fail(ctx context.Context, roadmap *dm.Roadmap, cause error) {
	s.log.Error("roadmap build failed", "roadmap_id", roadmap.ID, "milestones", len(roadmap.Milestones), "error", cause)

	reason := cause.Error()
	if errors.Is(cause, context.DeadlineExceeded) {
		reason = "build timed out"
	}
	roadmap.Status = dm.RoadmapStatusFailed
	roadmap.FailureReason = reason

	if err := s.roadmaps.UpdateStatus(context.WithoutCancel(ctx), roadmap.ID, dm.RoadmapStatusFailed, reason); err != nil {
		s.log.Warn("could not mark roadmap failed", "roadmap_id", roadmap.ID, "error", err)
	}
	s.emitter.Emit(ctx, roadmap.CreatorID, realtime.EventRoadmapFailed, response_models.RoadmapFailedEvent{
		RoadmapID: roadmap.ID,
		Reason:    reason,
	})
}
