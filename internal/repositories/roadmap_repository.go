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

type RoadmapRepository interface {
	// CreateRoadmap inserts the header row and fills in id and created_at.
	CreateRoadmap(ctx context.Context, roadmap *dm.Roadmap) error
	// AppendMilestone inserts milestone and, when prevID is set, links the
	// previous node to it in the same transaction. A previous node that is
	// already linked yields utils.ErrConflict and nothing is written.
	AppendMilestone(ctx context.Context, roadmapID string, prevID *string, milestone *dm.RoadmapMilestone) error
	UpdateStatus(ctx context.Context, roadmapID string, status dm.RoadmapStatus, reason string) error
	// GetRoadmap returns the roadmap with its milestones in chain order.
	GetRoadmap(ctx context.Context, roadmapID string) (*dm.Roadmap, error)
}

type roadmapRepository struct {
	db *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) RoadmapRepository {
	return &roadmapRepository{db: db}
}

func (r *roadmapRepository) CreateRoadmap(ctx context.Context, roadmap *dm.Roadmap) error {
	status := roadmap.Status
	if status == "" {
		status = dm.RoadmapStatusBuilding
	}
	row := dbm.Roadmap{
		Label:            roadmap.Label,
		Description:      roadmap.Description,
		CreatorID:        roadmap.CreatorID,
		MaterialID:       roadmap.MaterialID,
		RequestedContent: roadmap.RequestedContent,
		Status:           string(status),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapDBError("create roadmap", err)
	}
	roadmap.ID = row.ID.String()
	roadmap.CreatedAt = utils.FromUnixMillis(row.CreatedAt)
	roadmap.Status = status
	return nil
}

func (r *roadmapRepository) AppendMilestone(ctx context.Context, roadmapID string, prevID *string, milestone *dm.RoadmapMilestone) error {
	rid, err := parseID("roadmap", roadmapID)
	if err != nil {
		return err
	}
	var prev uuid.UUID
	if prevID != nil {
		if prev, err = parseID("milestone", *prevID); err != nil {
			return err
		}
	}
	checkpoints, err := json.Marshal(milestone.Content)
	if err != nil {
		return fmt.Errorf("%w: encode checkpoints: %v", utils.ErrDatabaseError, err)
	}

	row := dbm.RoadmapMilestone{
		RoadmapID:   rid,
		Position:    milestone.Position,
		Label:       milestone.Label,
		Description: milestone.Description,
		Checkpoints: datatypes.JSON(checkpoints),
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return mapDBError("insert milestone", err)
		}
		if prevID == nil {
			return nil
		}
		res := tx.Model(&dbm.RoadmapMilestone{}).
			Where("id = ? AND roadmap_id = ? AND next_milestone_id IS NULL", prev, rid).
			Updates(map[string]interface{}{
				"next_milestone_id": row.ID,
				"updated_at":        utils.NowUnixMillis(),
			})
		if res.Error != nil {
			return mapDBError("link milestone", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: milestone %s is missing or already linked", utils.ErrConflict, *prevID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	milestone.ID = row.ID.String()
	return nil
}

func (r *roadmapRepository) UpdateStatus(ctx context.Context, roadmapID string, status dm.RoadmapStatus, reason string) error {
	rid, err := parseID("roadmap", roadmapID)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&dbm.Roadmap{}).
		Where("id = ?", rid).
		Updates(map[string]interface{}{
			"status":         string(status),
			"failure_reason": reason,
			"updated_at":     utils.NowUnixMillis(),
		})
	if res.Error != nil {
		return mapDBError("update roadmap status", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: roadmap %s", utils.ErrNotFound, roadmapID)
	}
	return nil
}

func (r *roadmapRepository) GetRoadmap(ctx context.Context, roadmapID string) (*dm.Roadmap, error) {
	rid, err := parseID("roadmap", roadmapID)
	if err != nil {
		return nil, err
	}

	var row dbm.Roadmap
	err = r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", rid).
		First(&row).Error
	if err != nil {
		return nil, mapDBError("get roadmap "+roadmapID, err)
	}

	out := &dm.Roadmap{
		ID:               row.ID.String(),
		Label:            row.Label,
		Description:      row.Description,
		CreatedAt:        utils.FromUnixMillis(row.CreatedAt),
		CreatorID:        row.CreatorID,
		MaterialID:       row.MaterialID,
		RequestedContent: row.RequestedContent,
		Status:           dm.RoadmapStatus(row.Status),
		FailureReason:    row.FailureReason,
		Milestones:       make([]dm.RoadmapMilestone, 0, len(row.Milestones)),
	}
	for _, m := range row.Milestones {
		node := dm.RoadmapMilestone{
			ID:          m.ID.String(),
			Position:    m.Position,
			Label:       m.Label,
			Description: m.Description,
		}
		if len(m.Checkpoints) > 0 {
			if err := json.Unmarshal(m.Checkpoints, &node.Content); err != nil {
				return nil, fmt.Errorf("%w: decode checkpoints of %s: %v", utils.ErrDatabaseError, node.ID, err)
			}
		}
		if m.NextMilestoneID != nil {
			next := m.NextMilestoneID.String()
			node.NextMilestoneID = &next
		}
		out.Milestones = append(out.Milestones, node)
	}
	return out, nil
}
