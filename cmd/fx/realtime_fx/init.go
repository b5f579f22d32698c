package realtime_fx

import (
	"context"

	"go.uber.org/fx"

	"learnez/internal/infra"
	"learnez/internal/realtime"
	"learnez/pkg/logger"
)

var Module = fx.Provide(
	realtime.NewSSEHub,
	provideEmitter)

// provideEmitter fans events out through redis when REDIS_ADDR is set so
// every instance's subscribers see them; otherwise it stays in-process.
func provideEmitter(lc fx.Lifecycle, cfg *infra.Config, hub *realtime.SSEHub, log *logger.Logger) (realtime.Emitter, error) {
	if cfg.RedisAddr == "" {
		log.Info("realtime events are local to this instance")
		return &realtime.HubEmitter{Hub: hub}, nil
	}

	bus, err := realtime.NewRedisBus(realtime.RedisBusConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Channel:  cfg.RedisChannel,
	}, log)
	if err != nil {
		return nil, err
	}

	fwdCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return bus.StartForwarder(fwdCtx, hub.Broadcast)
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return bus.Close()
		},
	})
	return &realtime.BusEmitter{Bus: bus, Hub: hub, Log: log}, nil
}
