package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

type OpenAIEmbeddingClient struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

func NewOpenAIEmbeddingClient(apiKey, model string, dimensions int) (*OpenAIEmbeddingClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai embedding client: api key is required")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbeddingClient{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
	}, nil
}

func (c *OpenAIEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	vectors, err := c.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vectors[0], nil
}

func (c *OpenAIEmbeddingClient) GetEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no input texts provided")
	}
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      c.model,
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([]pgvector.Vector, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		vectors[d.Index] = pgvector.NewVector(d.Embedding)
	}
	return vectors, nil
}

func (c *OpenAIEmbeddingClient) Close() error { return nil }
