package response_models

import (
	"time"

	dm "learnez/internal/models/domain_models"
)

type BeginQuizResponse struct {
	AttemptID string `json:"attempt_id"`
}

type QuestionView struct {
	Question     string        `json:"question"`
	Choices      dm.Choices    `json:"choices"`
	Level        int           `json:"level"`
	MaxScore     int           `json:"max_score"`
	MinScore     int           `json:"min_score"`
	PassingScore int           `json:"passing_score"`
	Reference    *dm.Reference `json:"reference,omitempty"`

	// Set only once the question has been answered.
	Answer         string     `json:"answer,omitempty"`
	UserAnswer     *string    `json:"user_answer,omitempty"`
	PointsReceived *int       `json:"points_received,omitempty"`
	AnsweredAt     *time.Time `json:"answered_at,omitempty"`
}

// AttemptResponse is the learner's view of an attempt. Speculative branches
// and the answer of the pending question are never exposed.
type AttemptResponse struct {
	ID           string         `json:"id"`
	MaterialID   string         `json:"material_id"`
	InitialQuery string         `json:"initial_query"`
	StartedAt    time.Time      `json:"started_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
	MaxLength    int            `json:"max_length,omitempty"`
	IsOver       bool           `json:"is_over"`
	Score        int            `json:"score"`
	Questions    []QuestionView `json:"questions"`
}

type AnswerResponse struct {
	WasCorrect bool            `json:"was_correct"`
	IsOver     bool            `json:"is_over"`
	Attempt    AttemptResponse `json:"attempt"`
}

func NewAttemptResponse(a *dm.Attempt) AttemptResponse {
	out := AttemptResponse{
		ID:           a.ID,
		MaterialID:   a.MaterialID,
		InitialQuery: a.InitialQuery,
		StartedAt:    a.StartedAt,
		EndedAt:      a.EndedAt,
		MaxLength:    a.MaxLength,
		IsOver:       a.IsOver(),
		Score:        a.Score(),
		Questions:    make([]QuestionView, 0, len(a.QuestionHistory)),
	}
	for _, qa := range a.QuestionHistory {
		q := qa.Question
		view := QuestionView{
			Question:     q.Question,
			Choices:      q.Choices,
			Level:        q.Level,
			MaxScore:     q.MaxScore,
			MinScore:     q.MinScore,
			PassingScore: q.PassingScore,
			Reference:    q.Reference,
		}
		if qa.Answered() {
			view.Answer = q.Answer
			view.UserAnswer = qa.UserAnswer
			view.PointsReceived = qa.PointsReceived
			view.AnsweredAt = qa.AnsweredAt
		}
		out.Questions = append(out.Questions, view)
	}
	return out
}

func NewAnswerResponse(r *dm.AnswerResult) AnswerResponse {
	return AnswerResponse{
		WasCorrect: r.WasCorrect,
		IsOver:     r.IsOver,
		Attempt:    NewAttemptResponse(r.Attempt),
	}
}
