package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Roadmap struct {
	BaseModel
	Label            string `gorm:"type:text"`
	Description      string `gorm:"type:text"`
	CreatorID        string `gorm:"type:varchar(128);index;not null"`
	MaterialID       string `gorm:"type:varchar(128);index;not null"`
	RequestedContent string `gorm:"type:text"`
	Status           string `gorm:"type:varchar(16);not null;default:'BUILDING'"`
	FailureReason    string `gorm:"type:text"`

	Milestones []RoadmapMilestone `gorm:"foreignKey:RoadmapID;constraint:OnDelete:CASCADE"`
}

func (Roadmap) TableName() string { return "roadmaps" }

// RoadmapMilestone is one chain node. NextMilestoneID is written once, in the
// transaction that inserts the following node.
type RoadmapMilestone struct {
	BaseModel
	RoadmapID       uuid.UUID      `gorm:"type:uuid;index:idx_roadmap_position,unique;not null"`
	Position        int            `gorm:"index:idx_roadmap_position,unique;not null"`
	Label           string         `gorm:"type:text;not null"`
	Description     string         `gorm:"type:text"`
	Checkpoints     datatypes.JSON `gorm:"type:jsonb"`
	NextMilestoneID *uuid.UUID     `gorm:"type:uuid"`
}

func (RoadmapMilestone) TableName() string { return "roadmap_milestones" }
