package llm

import (
	"context"
	"encoding/json"
)

// Provider generates content from a prompt. When Request.Schema is set the
// returned Content is JSON that has already been validated against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for structured JSON output.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema document plus the name providers use to label it.
// Names are kebab-case and double as the validation cache key.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt is the common single-turn request shape.
func UserPrompt(system, prompt string, schema *Schema) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		Schema:   schema,
	}
}

// resolveModel maps a friendly model name to a provider model id. Unknown
// names are passed through so callers can pin exact ids.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
