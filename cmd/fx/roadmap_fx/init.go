package roadmap_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"learnez/internal/infra"
	dm "learnez/internal/models/domain_models"
	"learnez/internal/realtime"
	"learnez/internal/repositories"
	"learnez/internal/services"
	"learnez/pkg/llm"
	"learnez/pkg/logger"
)

var Module = fx.Provide(
	provideRoadmapRepo,
	provideMilestoneGenerator,
	provideCheckpointGenerator,
	provideRoadmapService)

func provideRoadmapRepo(db *gorm.DB) repositories.RoadmapRepository {
	return repositories.NewRoadmapRepository(db)
}

func provideMilestoneGenerator(provider llm.Provider, retriever services.ContentRetrieverInterface, log *logger.Logger) services.MilestoneGeneratorInterface {
	return services.NewMilestoneGenerator(provider, retriever, log)
}

func provideCheckpointGenerator(provider llm.Provider, retriever services.ContentRetrieverInterface, log *logger.Logger) services.CheckpointGeneratorInterface {
	return services.NewCheckpointGenerator(provider, retriever, log)
}

func provideRoadmapService(
	lc fx.Lifecycle,
	roadmaps repositories.RoadmapRepository,
	materials repositories.MaterialRepository,
	milestones services.MilestoneGeneratorInterface,
	checkpoints services.CheckpointGeneratorInterface,
	emitter realtime.Emitter,
	cfg *infra.Config,
	log *logger.Logger,
) services.RoadmapServiceInterface {
	defaults := dm.RoadmapGenerationConfig{
		MaxLength:          cfg.RoadmapMaxLength,
		MinLength:          cfg.RoadmapMinLength,
		MilestoneMinLength: cfg.RoadmapMilestoneMinLength,
		MilestoneMaxLength: cfg.RoadmapMilestoneMaxLength,
		Locale:             cfg.RoadmapLocale,
	}
	svc := services.NewRoadmapService(roadmaps, materials, milestones, checkpoints, emitter, defaults, cfg.RoadmapBuildTimeout, log)
	lc.Append(fx.StopHook(svc.Wait))
	return svc
}
