package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/api/option"
)

type GeminiEmbeddingClient struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbeddingClient(apiKey, model string) (*GeminiEmbeddingClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini embedding client: api key is required")
	}
	if model == "" {
		model = "text-embedding-004"
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiEmbeddingClient{client: client, model: model}, nil
}

func (c *GeminiEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	em := c.client.EmbeddingModel(c.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("gemini embed: %w", err)
	}
	if res.Embedding == nil {
		return pgvector.Vector{}, errors.New("gemini embed: empty embedding")
	}
	return pgvector.NewVector(res.Embedding.Values), nil
}

func (c *GeminiEmbeddingClient) GetEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no input texts provided")
	}
	em := c.client.EmbeddingModel(c.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini batch embed: got %d vectors for %d inputs", len(res.Embeddings), len(texts))
	}
	vectors := make([]pgvector.Vector, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = pgvector.NewVector(e.Values)
	}
	return vectors, nil
}

func (c *GeminiEmbeddingClient) Close() error {
	return c.client.Close()
}
