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

type QuestionInput struct {
	Difficulty       int
	Topic            string
	MaterialID       string
	ExcludeQuestions []string
}

type QuestionGeneratorInterface interface {
	// GenerateQuestion returns a question stamped with in.Difficulty. Every
	// failure wraps utils.ErrGeneration.
	GenerateQuestion(ctx context.Context, in QuestionInput) (dm.Question, error)
}

type LLMQuestionGenerator struct {
	provider  llm.Provider
	retriever ContentRetrieverInterface
	log       *logger.Logger
}

func NewQuestionGenerator(provider llm.Provider, retriever ContentRetrieverInterface, log *logger.Logger) QuestionGeneratorInterface {
	return &LLMQuestionGenerator{
		provider:  provider,
		retriever: retriever,
		log:       log.With("component", "QuestionGenerator"),
	}
}

type questionOutput struct {
	Question     string     `json:"question"`
	Choices      dm.Choices `json:"choices"`
	AnswerKey    string     `json:"answer_key"`
	MaxScore     int        `json:"max_score"`
	MinScore     int        `json:"min_score"`
	PassingScore int        `json:"passing_score"`
	SourceIndex  int        `json:"source_index"`
}

func (g *LLMQuestionGenerator) GenerateQuestion(ctx context.Context, in QuestionInput) (dm.Question, error) {
	in.Difficulty = dm.ClampLevel(in.Difficulty)

	passages, err := g.retriever.Retrieve(ctx, in.MaterialID, in.Topic, DefaultRetrievalLimit)
	if err != nil {
		return dm.Question{}, fmt.Errorf("%w: retrieve grounding: %v", utils.ErrGeneration, err)
	}

	ctx = llm.WithPurpose(ctx, "quiz-question")
	req := llm.UserPrompt(questionSystemPrompt, buildQuestionPrompt(in, passages), questionSchema)
	req.Temperature = 0.7

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return dm.Question{}, fmt.Errorf("%w: %v", utils.ErrGeneration, err)
	}

	var out questionOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return dm.Question{}, fmt.Errorf("%w: decode question: %v", utils.ErrGeneration, err)
	}

	q, err := toQuestion(out, in, passages)
	if err != nil {
		return dm.Question{}, err
	}

	for _, asked := range in.ExcludeQuestions {
		if dm.NormalizeAnswer(asked) == dm.NormalizeAnswer(q.Question) {
			g.log.Warn("generated question repeats an excluded one", "material_id", in.MaterialID, "level", q.Level)
			break
		}
	}
	return q, nil
}

func toQuestion(out questionOutput, in QuestionInput, passages []dm.Passage) (dm.Question, error) {
	if strings.TrimSpace(out.Question) == "" {
		return dm.Question{}, fmt.Errorf("%w: empty question text", utils.ErrGeneration)
	}
	for _, c := range out.Choices.All() {
		if strings.TrimSpace(c) == "" {
			return dm.Question{}, fmt.Errorf("%w: question needs four non-empty choices", utils.ErrGeneration)
		}
	}
	answer, ok := out.Choices.Lookup(out.AnswerKey)
	if !ok {
		return dm.Question{}, fmt.Errorf("%w: unknown answer key %q", utils.ErrGeneration, out.AnswerKey)
	}

	maxScore, minScore, passing := out.MaxScore, out.MinScore, out.PassingScore
	if maxScore <= 0 {
		maxScore = 10
	}
	if minScore < 0 || minScore >= maxScore {
		minScore = 0
	}
	if passing < minScore || passing > maxScore {
		passing = (maxScore + minScore) / 2
	}

	return dm.Question{
		Question:     strings.TrimSpace(out.Question),
		Answer:       answer,
		Choices:      out.Choices,
		Level:        in.Difficulty,
		MaxScore:     maxScore,
		MinScore:     minScore,
		PassingScore: passing,
		Reference:    pickReference(in.MaterialID, passages, out.SourceIndex),
	}, nil
}

// pickReference prefers the passage the model cited and falls back to the
// top hit. Ungrounded questions carry no reference.
func pickReference(materialID string, passages []dm.Passage, index int) *dm.Reference {
	if len(passages) == 0 {
		return nil
	}
	p := passages[0]
	if index >= 0 && index < len(passages) {
		p = passages[index]
	}
	return &dm.Reference{
		ReferenceID:         p.ID,
		ReferenceCollection: dm.MaterialCollection(materialID),
		ReferenceContent:    p.Content,
	}
}
