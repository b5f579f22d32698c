package domain_models

import "time"

type RoadmapStatus string

const (
	RoadmapStatusBuilding RoadmapStatus = "BUILDING"
	RoadmapStatusReady    RoadmapStatus = "READY"
	RoadmapStatusFailed   RoadmapStatus = "FAILED"
)

type CheckpointStatus string

const (
	CheckpointNotStarted CheckpointStatus = "NOT_STARTED"
	CheckpointInProgress CheckpointStatus = "IN_PROGRESS"
	CheckpointCompleted  CheckpointStatus = "COMPLETED"
)

type Checkpoint struct {
	Label             string           `json:"label"`
	Description       string           `json:"description"`
	Status            CheckpointStatus `json:"status"`
	ReferenceMaterial []Reference      `json:"reference_material"`
}

// RoadmapMilestone is one node of the chain. NextMilestoneID is set once,
// when the following node is created.
type RoadmapMilestone struct {
	ID              string       `json:"id"`
	Position        int          `json:"position"`
	Label           string       `json:"label"`
	Description     string       `json:"description"`
	Content         []Checkpoint `json:"content"`
	NextMilestoneID *string      `json:"next_milestone_id,omitempty"`
}

type Roadmap struct {
	ID               string             `json:"id"`
	Label            string             `json:"label"`
	Description      string             `json:"description"`
	CreatedAt        time.Time          `json:"created_at"`
	CreatorID        string             `json:"creator_id"`
	MaterialID       string             `json:"material_id"`
	RequestedContent string             `json:"requested_content"`
	Status           RoadmapStatus      `json:"status"`
	FailureReason    string             `json:"failure_reason,omitempty"`
	Milestones       []RoadmapMilestone `json:"milestones"`
}

// StartNode returns the head of the chain, or nil while nothing is built.
func (r *Roadmap) StartNode() *RoadmapMilestone {
	if len(r.Milestones) == 0 {
		return nil
	}
	return &r.Milestones[0]
}

// Next follows m's next link.
func (r *Roadmap) Next(m *RoadmapMilestone) *RoadmapMilestone {
	if m == nil || m.NextMilestoneID == nil {
		return nil
	}
	for i := range r.Milestones {
		if r.Milestones[i].ID == *m.NextMilestoneID {
			return &r.Milestones[i]
		}
	}
	return nil
}

// Previous is derived from position; the chain stores no back links.
func (r *Roadmap) Previous(m *RoadmapMilestone) *RoadmapMilestone {
	if m == nil {
		return nil
	}
	for i := range r.Milestones {
		if r.Milestones[i].ID == m.ID {
			if i == 0 {
				return nil
			}
			return &r.Milestones[i-1]
		}
	}
	return nil
}

// Descriptions lists milestone descriptions in chain order.
func (r *Roadmap) Descriptions() []string {
	out := make([]string, 0, len(r.Milestones))
	for _, m := range r.Milestones {
		out = append(out, m.Description)
	}
	return out
}

type RoadmapGenerationConfig struct {
	MaxLength          int    `json:"max_length"`
	MinLength          int    `json:"min_length"`
	MilestoneMinLength int    `json:"milestone_min_length"`
	MilestoneMaxLength int    `json:"milestone_max_length"`
	Locale             string `json:"locale"`
}

func DefaultRoadmapGenerationConfig() RoadmapGenerationConfig {
	return RoadmapGenerationConfig{
		MaxLength:          10,
		MinLength:          5,
		MilestoneMinLength: 5,
		MilestoneMaxLength: 5,
		Locale:             "vi",
	}
}

const (
	minConfigValue = 1
	maxConfigValue = 50
)

// Merge overlays the non-zero fields of override onto c and clamps every
// count into [1, 50]. Minimums never exceed their maximums.
func (c RoadmapGenerationConfig) Merge(override *RoadmapGenerationConfig) RoadmapGenerationConfig {
	out := c
	if override != nil {
		if override.MaxLength != 0 {
			out.MaxLength = override.MaxLength
		}
		if override.MinLength != 0 {
			out.MinLength = override.MinLength
		}
		if override.MilestoneMinLength != 0 {
			out.MilestoneMinLength = override.MilestoneMinLength
		}
		if override.MilestoneMaxLength != 0 {
			out.MilestoneMaxLength = override.MilestoneMaxLength
		}
		if override.Locale != "" {
			out.Locale = override.Locale
		}
	}
	out.MaxLength = clampInt(out.MaxLength, minConfigValue, maxConfigValue)
	out.MinLength = clampInt(out.MinLength, minConfigValue, out.MaxLength)
	out.MilestoneMaxLength = clampInt(out.MilestoneMaxLength, minConfigValue, maxConfigValue)
	out.MilestoneMinLength = clampInt(out.MilestoneMinLength, minConfigValue, out.MilestoneMaxLength)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MilestoneDraft is what the milestone generator proposes. An empty Label
// ends the chain.
type MilestoneDraft struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// CheckpointDraft is one proposed checkpoint before it is decorated with
// references and status.
type CheckpointDraft struct {
	Label         string `json:"label"`
	Description   string `json:"description"`
	SourceID      string `json:"source_id,omitempty"`
	SourceSnippet string `json:"source_snippet,omitempty"`
}

// Passage is one retrieved grounding chunk.
type Passage struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Section string  `json:"section,omitempty"`
	Score   float64 `json:"score"`
}

func MaterialCollection(materialID string) string {
	return "materials/" + materialID + "/embeddings"
}
