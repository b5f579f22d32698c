package db_models

import (
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Material is reference material a learner uploaded. Upload and ingestion
// happen elsewhere; this service only reads it.
type Material struct {
	BaseModel
	OwnerID   string `gorm:"type:varchar(128);index"`
	Title     string `gorm:"type:text"`
	SourceURI string `gorm:"type:text"`
}

func (Material) TableName() string { return "materials" }

// MaterialChunk is one embedded passage of a material.
type MaterialChunk struct {
	BaseModel
	MaterialID  string          `gorm:"type:varchar(128);index;not null"`
	Ordinal     int             `gorm:"not null"`
	Content     string          `gorm:"type:text;not null"`
	SectionPath pq.StringArray  `gorm:"type:text[]"`
	Embedding   pgvector.Vector `gorm:"type:vector"`
}

func (MaterialChunk) TableName() string { return "material_chunks" }
