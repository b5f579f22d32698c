package db_models

import (
	"gorm.io/datatypes"
)

// QuizAttempt stores an attempt as a document: the question history is a
// JSON column and Version guards concurrent writers.
type QuizAttempt struct {
	BaseModel
	UserID          string         `gorm:"type:varchar(128);index;not null"`
	MaterialID      string         `gorm:"type:varchar(128);index;not null"`
	InitialQuery    string         `gorm:"type:text;not null"`
	StartedAt       int64          `gorm:"not null"` // epoch ms
	EndedAt         *int64
	MaxLength       int            `gorm:"not null;default:0"`
	QuestionHistory datatypes.JSON `gorm:"type:jsonb;not null"`
	Version         int            `gorm:"not null;default:1"`
}

func (QuizAttempt) TableName() string { return "quiz_attempts" }
