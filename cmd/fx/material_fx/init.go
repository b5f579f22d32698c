package material_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"learnez/internal/infra"
	"learnez/internal/repositories"
	"learnez/internal/services"
	"learnez/pkg/logger"
	"learnez/pkg/utils"
)

var Module = fx.Provide(provideMaterialRepo, provideContentRetriever)

func provideMaterialRepo(db *gorm.DB) repositories.MaterialRepository {
	return repositories.NewMaterialRepository(db)
}

func provideContentRetriever(
	embedder utils.EmbeddingClientInterface,
	materials repositories.MaterialRepository,
	cfg *infra.Config,
	log *logger.Logger,
) services.ContentRetrieverInterface {
	return services.NewContentRetriever(embedder, materials, cfg.RetrievalCacheTTL, log)
}
