package infra

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the whole process configuration, read once from the environment
// (optionally seeded from a .env file).
type Config struct {
	Port        string
	AppEnv      string
	PostgresURL string
	JWTSecret   string
	CORSOrigins []string

	LLMProvider     string
	LLMTimeout      time.Duration
	LLMMaxAttempts  int
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingDimensions int
	RetrievalCacheTTL   time.Duration

	QuizStartDifficulty int
	QuizOffsetCorrect   int
	QuizOffsetWrong     int
	QuizMaxQuestions    int
	SpeculationTimeout  time.Duration

	RoadmapMaxLength          int
	RoadmapMinLength          int
	RoadmapMilestoneMinLength int
	RoadmapMilestoneMaxLength int
	RoadmapLocale             string
	RoadmapBuildTimeout       time.Duration

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelSampleRatio float64
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		AppEnv:      getEnvWithDefault("APP_ENV", "development"),
		PostgresURL: os.Getenv("POSTGRES_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: getEnvList("CORS_ORIGINS"),

		LLMProvider:     getEnvWithDefault("LLM_PROVIDER", "gemini"),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxAttempts:  getEnvInt("LLM_MAX_ATTEMPTS", 3),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnvWithDefault("GEMINI_MODEL", "gemini-flash"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnvWithDefault("ANTHROPIC_MODEL", "claude-haiku"),

		EmbeddingProvider:   getEnvWithDefault("EMBEDDING_PROVIDER", "gemini"),
		EmbeddingModel:      os.Getenv("EMBEDDING_MODEL"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 0),
		RetrievalCacheTTL:   getEnvDuration("RETRIEVAL_CACHE_TTL", 5*time.Minute),

		QuizStartDifficulty: getEnvInt("QUIZ_START_DIFFICULTY", 5),
		QuizOffsetCorrect:   getEnvInt("QUIZ_OFFSET_CORRECT", 1),
		QuizOffsetWrong:     getEnvInt("QUIZ_OFFSET_WRONG", 1),
		QuizMaxQuestions:    getEnvInt("QUIZ_MAX_QUESTIONS", 0),
		SpeculationTimeout:  getEnvDuration("SPECULATION_TIMEOUT", 2*time.Minute),

		RoadmapMaxLength:          getEnvInt("ROADMAP_MAX_LENGTH", 10),
		RoadmapMinLength:          getEnvInt("ROADMAP_MIN_LENGTH", 5),
		RoadmapMilestoneMinLength: getEnvInt("ROADMAP_MILESTONE_MIN_LENGTH", 5),
		RoadmapMilestoneMaxLength: getEnvInt("ROADMAP_MILESTONE_MAX_LENGTH", 5),
		RoadmapLocale:             getEnvWithDefault("ROADMAP_LOCALE", "vi"),
		RoadmapBuildTimeout:       getEnvDuration("ROADMAP_BUILD_TIMEOUT", 15*time.Minute),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisChannel:  getEnvWithDefault("REDIS_CHANNEL", "learnez:events"),

		OtelEnabled:     getEnvBool("OTEL_ENABLED"),
		OtelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelInsecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE"),
		OtelSampleRatio: getEnvFloat("OTEL_SAMPLER_RATIO", 0.1),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.PostgresURL == "" {
		errs = append(errs, errors.New("POSTGRES_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.QuizStartDifficulty < 1 || c.QuizStartDifficulty > 10 {
		errs = append(errs, errors.New("QUIZ_START_DIFFICULTY must be within 1..10"))
	}
	if c.QuizOffsetCorrect < 0 || c.QuizOffsetWrong < 0 {
		errs = append(errs, errors.New("QUIZ_OFFSET_CORRECT and QUIZ_OFFSET_WRONG must not be negative"))
	}
	if c.QuizMaxQuestions < 0 {
		errs = append(errs, errors.New("QUIZ_MAX_QUESTIONS must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.AppEnv)
	return env == "production" || env == "prod"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func getEnvList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
