package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	dm "learnez/internal/models/domain_models"
	"learnez/pkg/llm"
	"learnez/pkg/logger"
	"learnez/pkg/utils"
)

type MilestoneInput struct {
	PreviousDescriptions []string
	Index                int
	MaxCount             int
	MinCount             int
	MaterialID           string
	UserGoal             string
	Locale               string
}

type MilestoneGeneratorInterface interface {
	// GenerateMilestone proposes milestone number in.Index. An empty label
	// means the roadmap is complete.
	GenerateMilestone(ctx context.Context, in MilestoneInput) (dm.MilestoneDraft, error)
}

type CheckpointInput struct {
	MilestoneName        string
	MilestoneDescription string
	MaterialID           string
	MinCount             int
	MaxCount             int
	Locale               string
}

type CheckpointGeneratorInterface interface {
	GenerateCheckpoints(ctx context.Context, in CheckpointInput) ([]dm.CheckpointDraft, error)
}

type LLMMilestoneGenerator struct {
	provider  llm.Provider
	retriever ContentRetrieverInterface
	log       *logger.Logger
}

func NewMilestoneGenerator(provider llm.Provider, retriever ContentRetrieverInterface, log *logger.Logger) MilestoneGeneratorInterface {
	return &LLMMilestoneGenerator{
		provider:  provider,
		retriever: retriever,
		log:       log.With("component", "MilestoneGenerator"),
	}
}

func (g *LLMMilestoneGenerator) GenerateMilestone(ctx context.Context, in MilestoneInput) (dm.MilestoneDraft, error) {
	if in.MaxCount > 0 && in.Index >= in.MaxCount {
		return dm.MilestoneDraft{}, nil
	}

	query := in.UserGoal
	if n := len(in.PreviousDescriptions); n > 0 {
		query = strings.TrimSpace(query + " " + in.PreviousDescriptions[n-1])
	}
	passages, err := g.ground(ctx, in.MaterialID, query)
	if err != nil {
		return dm.MilestoneDraft{}, err
	}

	ctx = llm.WithPurpose(ctx, "roadmap-milestone")
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(milestoneSystemPrompt, buildMilestonePrompt(in, passages), milestoneSchema))
	if err != nil {
		return dm.MilestoneDraft{}, fmt.Errorf("%w: %v", utils.ErrGeneration, err)
	}

	var out dm.MilestoneDraft
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return dm.MilestoneDraft{}, fmt.Errorf("%w: decode milestone: %v", utils.ErrGeneration, err)
	}
	out.Label = strings.TrimSpace(out.Label)
	out.Description = strings.TrimSpace(out.Description)
	return out, nil
}

func (g *LLMMilestoneGenerator) ground(ctx context.Context, materialID, query string) ([]dm.Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	passages, err := g.retriever.Retrieve(ctx, materialID, query, DefaultRetrievalLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve grounding: %v", utils.ErrGeneration, err)
	}
	return passages, nil
}

type LLMCheckpointGenerator struct {
	provider  llm.Provider
	retriever ContentRetrieverInterface
	log       *logger.Logger
}

func NewCheckpointGenerator(provider llm.Provider, retriever ContentRetrieverInterface, log *logger.Logger) CheckpointGeneratorInterface {
	return &LLMCheckpointGenerator{
		provider:  provider,
		retriever: retriever,
		log:       log.With("component", "CheckpointGenerator"),
	}
}

type checkpointOutput struct {
	Checkpoints []struct {
		Label       string `json:"label"`
		Description string `json:"description"`
		SourceIndex int    `json:"source_index"`
	} `json:"checkpoints"`
}

func (g *LLMCheckpointGenerator) GenerateCheckpoints(ctx context.Context, in CheckpointInput) ([]dm.CheckpointDraft, error) {
	limit := in.MaxCount
	if limit < DefaultRetrievalLimit {
		limit = DefaultRetrievalLimit
	}
	query := strings.TrimSpace(in.MilestoneName + " " + in.MilestoneDescription)
	passages, err := g.retriever.Retrieve(ctx, in.MaterialID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve grounding: %v", utils.ErrGeneration, err)
	}

	ctx = llm.WithPurpose(ctx, "milestone-checkpoints")
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(checkpointSystemPrompt, buildCheckpointPrompt(in, passages), checkpointSchema))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrGeneration, err)
	}

	var out checkpointOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("%w: decode checkpoints: %v", utils.ErrGeneration, err)
	}

	drafts := make([]dm.CheckpointDraft, 0, len(out.Checkpoints))
	for _, c := range out.Checkpoints {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			continue
		}
		d := dm.CheckpointDraft{Label: label, Description: strings.TrimSpace(c.Description)}
		if c.SourceIndex >= 0 && c.SourceIndex < len(passages) {
			d.SourceID = passages[c.SourceIndex].ID
			d.SourceSnippet = passages[c.SourceIndex].Content
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
