package domain_models

import (
	"strings"
)

const (
	MinLevel = 1
	MaxLevel = 10
)

type Reference struct {
	ReferenceID         string `json:"reference_id"`
	ReferenceCollection string `json:"reference_collection"`
	ReferenceContent    string `json:"reference_content"`
}

type Choices struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Lookup returns the text for a choice key. Keys are case-insensitive.
func (c Choices) Lookup(key string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case "A":
		return c.A, true
	case "B":
		return c.B, true
	case "C":
		return c.C, true
	case "D":
		return c.D, true
	}
	return "", false
}

func (c Choices) All() []string {
	return []string{c.A, c.B, c.C, c.D}
}

// Question is a generated multiple-choice item. It is never modified after
// generation.
type Question struct {
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	Choices      Choices    `json:"choices"`
	Level        int        `json:"level"`
	MaxScore     int        `json:"max_score"`
	MinScore     int        `json:"min_score"`
	PassingScore int        `json:"passing_score"`
	Reference    *Reference `json:"reference,omitempty"`
}

// IsCorrect compares answer with the stored answer after normalization. A
// bare choice key matches when it names the correct choice's text, and the
// choice text matches when the stored answer is the key.
func (q Question) IsCorrect(answer string) bool {
	given := NormalizeAnswer(answer)
	want := NormalizeAnswer(q.Answer)
	if given == "" || want == "" {
		return false
	}
	if given == want {
		return true
	}
	if text, ok := q.Choices.Lookup(given); ok && NormalizeAnswer(text) == want {
		return true
	}
	if text, ok := q.Choices.Lookup(want); ok && NormalizeAnswer(text) == given {
		return true
	}
	return false
}

// NormalizeAnswer trims, lowercases and collapses inner whitespace.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ClampLevel forces level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// HarderLevel is level+offset capped at MaxLevel.
func HarderLevel(level, offset int) int {
	return ClampLevel(level + offset)
}

// EasierLevel steps down by offset only when the result stays at or above
// MinLevel; otherwise the level is kept.
func EasierLevel(level, offset int) int {
	if level-offset >= MinLevel {
		return level - offset
	}
	return ClampLevel(level)
}
