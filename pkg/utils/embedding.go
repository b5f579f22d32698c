package utils

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingClientInterface turns text into vectors comparable with the
// stored material chunk embeddings.
type EmbeddingClientInterface interface {
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	GetEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	Close() error
}

// NewEmbeddingClient builds the client for provider ("openai", "gemini" or
// "local").
func NewEmbeddingClient(provider, apiKey, model string, dimensions int) (EmbeddingClientInterface, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return NewOpenAIEmbeddingClient(apiKey, model, dimensions)
	case "gemini":
		return NewGeminiEmbeddingClient(apiKey, model)
	case "local", "":
		return NewHashEmbeddingClient(dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// HashEmbeddingClient is a deterministic bag-of-words embedder for local
// development and tests. It needs no network access; similarity is lexical
// only.
type HashEmbeddingClient struct {
	dimensions int
}

func NewHashEmbeddingClient(dimensions int) *HashEmbeddingClient {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &HashEmbeddingClient{dimensions: dimensions}
}

func (c *HashEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	return pgvector.NewVector(c.textToVector(text)), nil
}

func (c *HashEmbeddingClient) GetEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no input texts provided")
	}
	vectors := make([]pgvector.Vector, len(texts))
	for i, text := range texts {
		vectors[i] = pgvector.NewVector(c.textToVector(text))
	}
	return vectors, nil
}

func (c *HashEmbeddingClient) Close() error { return nil }

func (c *HashEmbeddingClient) textToVector(text string) []float32 {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	vector := make([]float32, c.dimensions)

	for _, word := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		slot := h.Sum32()
		for i := 0; i < c.dimensions; i++ {
			vector[i] += float32(math.Sin(float64(slot+uint32(i))) * 0.1)
		}
	}

	var magnitude float64
	for _, val := range vector {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / magnitude)
		}
	}
	return vector
}
