package config_fx

import (
	"go.uber.org/fx"

	"learnez/internal/infra"
	"learnez/pkg/logger"
)

var Module = fx.Provide(
	infra.LoadConfig,
	provideLogger)

func provideLogger(lc fx.Lifecycle, cfg *infra.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(log.Sync))
	return log, nil
}
