package domain_models

import "time"

type QuestionAttempt struct {
	Question       Question   `json:"question"`
	UserAnswer     *string    `json:"user_answer,omitempty"`
	PointsReceived *int       `json:"points_received,omitempty"`
	AnsweredAt     *time.Time `json:"answered_at,omitempty"`

	// Speculative next questions, generated before the answer is known.
	HarderQuestion *Question `json:"harder_question,omitempty"`
	EasierQuestion *Question `json:"easier_question,omitempty"`
}

func (qa QuestionAttempt) Answered() bool {
	return qa.AnsweredAt != nil
}

// Attempt is one adaptive quiz session. QuestionHistory only grows; the last
// entry is the question currently awaiting an answer unless EndedAt is set.
type Attempt struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	MaterialID      string            `json:"material_id"`
	InitialQuery    string            `json:"initial_query"`
	StartedAt       time.Time         `json:"started_at"`
	EndedAt         *time.Time        `json:"ended_at,omitempty"`
	MaxLength       int               `json:"max_length,omitempty"`
	QuestionHistory []QuestionAttempt `json:"question_history"`
	Version         int               `json:"version"`
}

func (a *Attempt) IsOver() bool {
	return a.EndedAt != nil
}

// Last returns the newest history entry, or nil for an empty history.
func (a *Attempt) Last() *QuestionAttempt {
	if len(a.QuestionHistory) == 0 {
		return nil
	}
	return &a.QuestionHistory[len(a.QuestionHistory)-1]
}

// AskedQuestions flattens the question text of the whole history, in order.
func (a *Attempt) AskedQuestions() []string {
	out := make([]string, 0, len(a.QuestionHistory))
	for _, qa := range a.QuestionHistory {
		out = append(out, qa.Question.Question)
	}
	return out
}

func (a *Attempt) AnsweredCount() int {
	n := 0
	for _, qa := range a.QuestionHistory {
		if qa.Answered() {
			n++
		}
	}
	return n
}

// Score sums the points of every answered entry.
func (a *Attempt) Score() int {
	total := 0
	for _, qa := range a.QuestionHistory {
		if qa.PointsReceived != nil {
			total += *qa.PointsReceived
		}
	}
	return total
}

// Clone deep-copies the attempt so callers can mutate a working copy.
func (a *Attempt) Clone() *Attempt {
	out := *a
	if a.EndedAt != nil {
		t := *a.EndedAt
		out.EndedAt = &t
	}
	out.QuestionHistory = make([]QuestionAttempt, len(a.QuestionHistory))
	for i, qa := range a.QuestionHistory {
		out.QuestionHistory[i] = qa.clone()
	}
	return &out
}

func (qa QuestionAttempt) clone() QuestionAttempt {
	out := qa
	if qa.Question.Reference != nil {
		r := *qa.Question.Reference
		out.Question.Reference = &r
	}
	if qa.UserAnswer != nil {
		s := *qa.UserAnswer
		out.UserAnswer = &s
	}
	if qa.PointsReceived != nil {
		p := *qa.PointsReceived
		out.PointsReceived = &p
	}
	if qa.AnsweredAt != nil {
		t := *qa.AnsweredAt
		out.AnsweredAt = &t
	}
	if qa.HarderQuestion != nil {
		q := *qa.HarderQuestion
		out.HarderQuestion = &q
	}
	if qa.EasierQuestion != nil {
		q := *qa.EasierQuestion
		out.EasierQuestion = &q
	}
	return out
}

// AnswerResult is returned to the learner after each answer.
type AnswerResult struct {
	WasCorrect bool     `json:"was_correct"`
	IsOver     bool     `json:"is_over"`
	Attempt    *Attempt `json:"attempt"`
}
