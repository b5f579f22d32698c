package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"learnez/pkg/logger"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels the calls made with ctx, e.g. "quiz-question".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// LoggingProvider records one log line and one span per call.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

func WithLogging(p Provider, log *logger.Logger) Provider {
	if log == nil {
		log = logger.NewNop()
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	ctx, span := otel.Tracer("learnez/llm").Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", l.inner.ModelID()),
		attribute.String("llm.purpose", purpose),
	)

	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		l.log.Warn("llm request failed",
			"model", l.inner.ModelID(),
			"purpose", purpose,
			"latency_ms", latency,
			"error", err,
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int("llm.output_tokens", resp.Usage.OutputTokens),
	)
	l.log.Debug("llm request",
		"model", resp.Model,
		"purpose", purpose,
		"latency_ms", latency,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
