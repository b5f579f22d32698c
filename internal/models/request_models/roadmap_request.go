package request_models

import dm "learnez/internal/models/domain_models"

type RoadmapConfigRequest struct {
	MaxLength          int    `json:"max_length"`
	MinLength          int    `json:"min_length"`
	MilestoneMinLength int    `json:"milestone_min_length"`
	MilestoneMaxLength int    `json:"milestone_max_length"`
	Locale             string `json:"locale"`
}

type BuildRoadmapRequest struct {
	MaterialID       string                `json:"material_id" binding:"required"`
	RequestedContent string                `json:"requested_content"`
	Config           *RoadmapConfigRequest `json:"config,omitempty"`
}

// GenerationConfig returns the override to merge onto the server defaults,
// or nil when the request carries none.
func (r BuildRoadmapRequest) GenerationConfig() *dm.RoadmapGenerationConfig {
	if r.Config == nil {
		return nil
	}
	return &dm.RoadmapGenerationConfig{
		MaxLength:          r.Config.MaxLength,
		MinLength:          r.Config.MinLength,
		MilestoneMinLength: r.Config.MilestoneMinLength,
		MilestoneMaxLength: r.Config.MilestoneMaxLength,
		Locale:             r.Config.Locale,
	}
}

type GroundingQuery struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
}
