package repositories

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	dbm "learnez/internal/models/db_models"
	"learnez/pkg/utils"
)

type MaterialRepository interface {
	GetMaterial(ctx context.Context, materialID string) (*dbm.Material, error)
	CreateMaterial(ctx context.Context, material *dbm.Material) error
	CreateChunks(ctx context.Context, chunks []dbm.MaterialChunk) error
	// SearchChunks returns the chunks of materialID closest to embedding by
	// cosine distance, nearest first.
	SearchChunks(ctx context.Context, materialID string, embedding pgvector.Vector, limit int) ([]ChunkHit, error)
}

type ChunkHit struct {
	ID          string
	Content     string
	SectionPath pq.StringArray
	Distance    float64
}

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) GetMaterial(ctx context.Context, materialID string) (*dbm.Material, error) {
	id, err := parseID("material", materialID)
	if err != nil {
		return nil, err
	}
	var m dbm.Material
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapDBError("get material "+materialID, err)
	}
	return &m, nil
}

func (r *materialRepository) CreateMaterial(ctx context.Context, material *dbm.Material) error {
	return mapDBError("create material", r.db.WithContext(ctx).Create(material).Error)
}

func (r *materialRepository) CreateChunks(ctx context.Context, chunks []dbm.MaterialChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return mapDBError("create chunks", r.db.WithContext(ctx).CreateInBatches(chunks, 100).Error)
}

func (r *materialRepository) SearchChunks(ctx context.Context, materialID string, embedding pgvector.Vector, limit int) ([]ChunkHit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", utils.ErrInvalidArgument)
	}

	var rows []struct {
		ID          string
		Content     string
		SectionPath pq.StringArray
		Distance    float64
	}
	query := `
		SELECT id, content, section_path, (embedding <=> ?) AS distance
		FROM material_chunks
		WHERE material_id = ? AND deleted_at IS NULL AND embedding IS NOT NULL
		ORDER BY embedding <=> ?
		LIMIT ?`
	if err := r.db.WithContext(ctx).Raw(query, embedding, materialID, embedding, limit).Scan(&rows).Error; err != nil {
		return nil, mapDBError("search chunks", err)
	}

	hits := make([]ChunkHit, len(rows))
	for i, row := range rows {
		hits[i] = ChunkHit(row)
	}
	return hits, nil
}
