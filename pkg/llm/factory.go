package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learnez/pkg/logger"
)

type Config struct {
	// Provider is one of "openai", "gemini", "anthropic" or "mock".
	Provider string

	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Anthropic AnthropicConfig
	Retry     RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// NewProvider builds the configured provider wrapped as
// caller → timeout → retry → logging → base.
func NewProvider(ctx context.Context, cfg Config, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		return NewMockProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithRetry(WithLogging(base, log), cfg.Retry)
	if cfg.Timeout > 0 {
		p = &timeoutProvider{inner: p, timeout: cfg.Timeout}
	}
	return p, nil
}

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
