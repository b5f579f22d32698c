package services

import "learnez/pkg/llm"

var questionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "One multiple-choice question grounded in the supplied passages",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question shown to the learner",
			},
			"choices": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"a": map[string]any{"type": "string"},
					"b": map[string]any{"type": "string"},
					"c": map[string]any{"type": "string"},
					"d": map[string]any{"type": "string"},
				},
				"required":             []any{"a", "b", "c", "d"},
				"additionalProperties": false,
				"description":          "Exactly four options keyed a to d",
			},
			"answer_key": map[string]any{
				"type":        "string",
				"enum":        []any{"A", "B", "C", "D"},
				"description": "Key of the correct option",
			},
			"max_score": map[string]any{
				"type":        "integer",
				"description": "Points for a correct answer",
			},
			"min_score": map[string]any{
				"type":        "integer",
				"description": "Points for a wrong answer",
			},
			"passing_score": map[string]any{
				"type":        "integer",
				"description": "Threshold between min_score and max_score",
			},
			"source_index": map[string]any{
				"type":        "integer",
				"description": "Index of the passage the question is based on, or -1",
			},
		},
		"required":             []any{"question", "choices", "answer_key", "max_score", "min_score", "passing_score", "source_index"},
		"additionalProperties": false,
	},
}

var milestoneSchema = &llm.Schema{
	Name:        "roadmap-milestone",
	Description: "The next milestone of a learning roadmap, or an empty label when the roadmap is complete",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label": map[string]any{
				"type":        "string",
				"description": "Short milestone title. Empty string ends the roadmap.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "What the learner covers in this milestone",
			},
		},
		"required":             []any{"label", "description"},
		"additionalProperties": false,
	},
}

var checkpointSchema = &llm.Schema{
	Name:        "milestone-checkpoints",
	Description: "Ordered checkpoints that make up one milestone",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"checkpoints": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"label":        map[string]any{"type": "string"},
						"description":  map[string]any{"type": "string"},
						"source_index": map[string]any{"type": "integer", "description": "Index of the grounding passage, or -1"},
					},
					"required":             []any{"label", "description", "source_index"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"checkpoints"},
		"additionalProperties": false,
	},
}
