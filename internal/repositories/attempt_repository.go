package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbm "learnez/internal/models/db_models"
	dm "learnez/internal/models/domain_models"
	"learnez/pkg/utils"
)

type AttemptRepository interface {
	// Create inserts a new attempt at version 1 and fills in its id.
	Create(ctx context.Context, attempt *dm.Attempt) error
	Get(ctx context.Context, attemptID string) (*dm.Attempt, error)
	// Save writes attempt if the stored version still equals attempt.Version,
	// then bumps attempt.Version. A stale version yields utils.ErrConflict.
	Save(ctx context.Context, attempt *dm.Attempt) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *dm.Attempt) error {
	history, err := json.Marshal(attempt.QuestionHistory)
	if err != nil {
		return fmt.Errorf("%w: encode history: %v", utils.ErrDatabaseError, err)
	}

	row := dbm.QuizAttempt{
		UserID:          attempt.UserID,
		MaterialID:      attempt.MaterialID,
		InitialQuery:    attempt.InitialQuery,
		StartedAt:       attempt.StartedAt.UnixMilli(),
		EndedAt:         utils.UnixMillisPtr(attempt.EndedAt),
		MaxLength:       attempt.MaxLength,
		QuestionHistory: datatypes.JSON(history),
		Version:         1,
	}
	if attempt.ID != "" {
		id, err := uuid.Parse(attempt.ID)
		if err != nil {
			return fmt.Errorf("%w: attempt id %q", utils.ErrInvalidArgument, attempt.ID)
		}
		row.ID = id
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapDBError("create attempt", err)
	}
	attempt.ID = row.ID.String()
	attempt.Version = row.Version
	return nil
}

func (r *attemptRepository) Get(ctx context.Context, attemptID string) (*dm.Attempt, error) {
	id, err := parseID("attempt", attemptID)
	if err != nil {
		return nil, err
	}

	var row dbm.QuizAttempt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapDBError("get attempt "+attemptID, err)
	}
	return toDomainAttempt(&row)
}

func (r *attemptRepository) Save(ctx context.Context, attempt *dm.Attempt) error {
	id, err := parseID("attempt", attempt.ID)
	if err != nil {
		return err
	}
	history, err := json.Marshal(attempt.QuestionHistory)
	if err != nil {
		return fmt.Errorf("%w: encode history: %v", utils.ErrDatabaseError, err)
	}

	res := r.db.WithContext(ctx).
		Model(&dbm.QuizAttempt{}).
		Where("id = ? AND version = ?", id, attempt.Version).
		Updates(map[string]interface{}{
			"question_history": datatypes.JSON(history),
			"ended_at":         utils.UnixMillisPtr(attempt.EndedAt),
			"version":          gorm.Expr("version + 1"),
			"updated_at":       utils.NowUnixMillis(),
		})
	if res.Error != nil {
		return mapDBError("save attempt "+attempt.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&dbm.QuizAttempt{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return mapDBError("save attempt "+attempt.ID, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: attempt %s", utils.ErrNotFound, attempt.ID)
		}
		return fmt.Errorf("%w: attempt %s at version %d", utils.ErrConflict, attempt.ID, attempt.Version)
	}
	attempt.Version++
	return nil
}

func toDomainAttempt(row *dbm.QuizAttempt) (*dm.Attempt, error) {
	a := &dm.Attempt{
		ID:           row.ID.String(),
		UserID:       row.UserID,
		MaterialID:   row.MaterialID,
		InitialQuery: row.InitialQuery,
		StartedAt:    utils.FromUnixMillis(row.StartedAt),
		MaxLength:    row.MaxLength,
		Version:      row.Version,
	}
	if row.EndedAt != nil {
		t := utils.FromUnixMillis(*row.EndedAt)
		a.EndedAt = &t
	}
	if len(row.QuestionHistory) > 0 {
		if err := json.Unmarshal(row.QuestionHistory, &a.QuestionHistory); err != nil {
			return nil, fmt.Errorf("%w: decode history of %s: %v", utils.ErrDatabaseError, a.ID, err)
		}
	}
	return a, nil
}
