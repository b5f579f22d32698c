package response_models

import dm "learnez/internal/models/domain_models"

type RoadmapCreatedResponse struct {
	RoadmapID string           `json:"roadmap_id"`
	Status    dm.RoadmapStatus `json:"status"`
}

type MilestoneCreatedEvent struct {
	RoadmapID string               `json:"roadmap_id"`
	Milestone *dm.RoadmapMilestone `json:"milestone"`
}

type RoadmapFailedEvent struct {
	RoadmapID string `json:"roadmap_id"`
	Reason    string `json:"reason"`
}

type GroundingResponse struct {
	MaterialID string       `json:"material_id"`
	Collection string       `json:"collection"`
	Passages   []dm.Passage `json:"passages"`
}
