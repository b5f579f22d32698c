package controllers_fx

import (
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"learnez/internal/api/controllers"
	"learnez/internal/infra"
	"learnez/pkg/logger"
	"learnez/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(controllers.NewQuizController),
	fx.Provide(controllers.NewRoadmapController),
	fx.Provide(controllers.NewMaterialController),
	fx.Provide(controllers.NewEventsController),
	fx.Provide(provideHealthController),
	fx.Provide(provideTokenVerifier))

func provideHealthController(db *gorm.DB, log *logger.Logger) *controllers.HealthController {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("health check runs without database ping", "error", err)
		return controllers.NewHealthController(nil)
	}
	return controllers.NewHealthController(sqlDB)
}

func provideTokenVerifier(cfg *infra.Config) (*utils.TokenVerifier, error) {
	return utils.NewTokenVerifier(cfg.JWTSecret, 24*time.Hour)
}
