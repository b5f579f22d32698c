package ai_fx

import (
	"context"

	"go.uber.org/fx"

	"learnez/internal/infra"
	"learnez/pkg/llm"
	"learnez/pkg/logger"
	"learnez/pkg/utils"
)

var Module = fx.Provide(
	ProvideEmbeddingClient,
	ProvideLLMProvider)

// ProvideEmbeddingClient creates the query embedding client from config.
func ProvideEmbeddingClient(lc fx.Lifecycle, cfg *infra.Config, log *logger.Logger) (utils.EmbeddingClientInterface, error) {
	apiKey := cfg.GeminiAPIKey
	if cfg.EmbeddingProvider == "openai" {
		apiKey = cfg.OpenAIAPIKey
	}

	log.Info("initializing embedding client", "provider", cfg.EmbeddingProvider, "model", cfg.EmbeddingModel)
	client, err := utils.NewEmbeddingClient(cfg.EmbeddingProvider, apiKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(client.Close))
	return client, nil
}

// ProvideLLMProvider builds the generation provider with retry, timeout and
// logging applied.
func ProvideLLMProvider(cfg *infra.Config, log *logger.Logger) (llm.Provider, error) {
	retry := llm.DefaultRetryConfig()
	if cfg.LLMMaxAttempts > 0 {
		retry.MaxAttempts = cfg.LLMMaxAttempts
	}

	log.Info("initializing llm provider", "provider", cfg.LLMProvider)
	return llm.NewProvider(context.Background(), llm.Config{
		Provider: cfg.LLMProvider,
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		},
		Gemini: llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		},
		Retry:   retry,
		Timeout: cfg.LLMTimeout,
	}, log)
}
