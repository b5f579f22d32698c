package quiz_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"learnez/internal/infra"
	"learnez/internal/realtime"
	"learnez/internal/repositories"
	"learnez/internal/services"
	"learnez/pkg/llm"
	"learnez/pkg/logger"
	mem "learnez/pkg/memcache"
)

var Module = fx.Provide(provideAttemptRepo, provideQuestionGenerator, provideQuizService)

func provideAttemptRepo(db *gorm.DB) repositories.AttemptRepository {
	return repositories.NewAttemptRepository(db)
}

func provideQuestionGenerator(provider llm.Provider, retriever services.ContentRetrieverInterface, log *logger.Logger) services.QuestionGeneratorInterface {
	return services.NewQuestionGenerator(provider, retriever, log)
}

func provideQuizService(
	lc fx.Lifecycle,
	attempts repositories.AttemptRepository,
	generator services.QuestionGeneratorInterface,
	emitter realtime.Emitter,
	locks *mem.KeyedLocks,
	inflight *mem.InflightTracker,
	cfg *infra.Config,
	log *logger.Logger,
) services.QuizServiceInterface {
	svc := services.NewQuizService(attempts, generator, emitter, locks, inflight, services.QuizConfig{
		StartDifficulty:    cfg.QuizStartDifficulty,
		OffsetCorrect:      cfg.QuizOffsetCorrect,
		OffsetWrong:        cfg.QuizOffsetWrong,
		MaxQuestions:       cfg.QuizMaxQuestions,
		SpeculationTimeout: cfg.SpeculationTimeout,
	}, log)
	lc.Append(fx.StopHook(svc.Wait))
	return svc
}
