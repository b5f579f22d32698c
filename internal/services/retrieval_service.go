package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	dm "learnez/internal/models/domain_models"
	"learnez/internal/repositories"
	"learnez/pkg/logger"
	mem "learnez/pkg/memcache"
	"learnez/pkg/utils"
)

const (
	DefaultRetrievalLimit = 5
	MaxRetrievalLimit     = 20
)

type ContentRetrieverInterface interface {
	// Retrieve returns the passages of materialID most similar to query,
	// nearest first.
	Retrieve(ctx context.Context, materialID, query string, limit int) ([]dm.Passage, error)
}

type ContentRetriever struct {
	embedder  utils.EmbeddingClientInterface
	materials repositories.MaterialRepository
	cache     *mem.TTLCache[[]dm.Passage]
	log       *logger.Logger
}

// NewContentRetriever builds a retriever. A zero cacheTTL disables caching.
func NewContentRetriever(
	embedder utils.EmbeddingClientInterface,
	materials repositories.MaterialRepository,
	cacheTTL time.Duration,
	log *logger.Logger,
) ContentRetrieverInterface {
	r := &ContentRetriever{
		embedder:  embedder,
		materials: materials,
		log:       log.With("component", "ContentRetriever"),
	}
	if cacheTTL > 0 {
		r.cache = mem.NewTTLCache[[]dm.Passage](cacheTTL, 500)
	}
	return r
}

func (r *ContentRetriever) Retrieve(ctx context.Context, materialID, query string, limit int) ([]dm.Passage, error) {
	materialID = strings.TrimSpace(materialID)
	query = strings.TrimSpace(query)
	if materialID == "" {
		return nil, fmt.Errorf("%w: material id is required", utils.ErrInvalidArgument)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", utils.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}
	if limit > MaxRetrievalLimit {
		limit = MaxRetrievalLimit
	}

	key := materialID + "|" + strconv.Itoa(limit) + "|" + dm.NormalizeAnswer(query)
	if r.cache != nil {
		if hit, ok := r.cache.Get(key); ok {
			return hit, nil
		}
	}

	vec, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", utils.ErrGeneration, err)
	}

	hits, err := r.materials.SearchChunks(ctx, materialID, vec, limit)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return []dm.Passage{}, nil
		}
		return nil, err
	}

	passages := make([]dm.Passage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, dm.Passage{
			ID:      h.ID,
			Content: h.Content,
			Section: strings.Join(h.SectionPath, " > "),
			Score:   1 - h.Distance,
		})
	}
	r.log.Debug("retrieved passages", "material_id", materialID, "count", len(passages), "limit", limit)

	if r.cache != nil {
		r.cache.Set(key, passages)
	}
	return passages, nil
}
