package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	"learnez/cmd/fx/ai_fx"
	"learnez/cmd/fx/config_fx"
	"learnez/cmd/fx/controllers_fx"
	"learnez/cmd/fx/db_fx"
	"learnez/cmd/fx/material_fx"
	"learnez/cmd/fx/memcache_fx"
	"learnez/cmd/fx/quiz_fx"
	"learnez/cmd/fx/realtime_fx"
	"learnez/cmd/fx/roadmap_fx"
	"learnez/internal/api/controllers"
	"learnez/internal/infra"
	"learnez/pkg/logger"
	"learnez/pkg/middleware"
	"learnez/pkg/utils"
)

func runServer() error {
	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		ai_fx.Module,
		realtime_fx.Module,
		material_fx.Module,
		quiz_fx.Module,
		roadmap_fx.Module,
		controllers_fx.Module,

		fx.Invoke(StartTracing),
		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func StartTracing(lc fx.Lifecycle, cfg *infra.Config, log *logger.Logger) {
	shutdown := infra.InitOTel(context.Background(), cfg, log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
}

func StartServer(lc fx.Lifecycle, cfg *infra.Config, engine *gin.Engine, log *logger.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting HTTP server", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type routeParams struct {
	fx.In

	Config   *infra.Config
	Log      *logger.Logger
	Verifier *utils.TokenVerifier

	Quiz     *controllers.QuizController
	Roadmap  *controllers.RoadmapController
	Material *controllers.MaterialController
	Events   *controllers.EventsController
	Health   *controllers.HealthController
}

func ProvideRouter(p routeParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(otelgin.Middleware(infra.ServiceName))
	r.Use(middleware.RequestLogger(p.Log))
	r.Use(middleware.CORS(p.Config.CORSOrigins))

	RegisterRoutes(r, p)
	return r
}

func RegisterRoutes(r *gin.Engine, p routeParams) {
	r.GET("/healthz", p.Health.Healthz)

	api := r.Group("/", middleware.JWTAuthMiddleware(p.Verifier))

	quizGroup := api.Group("/quiz")
	quizGroup.POST("/begin", p.Quiz.BeginAttempt)
	quizGroup.POST("/:attemptId/answer", p.Quiz.RecordAnswer)
	quizGroup.GET("/:attemptId", p.Quiz.GetAttempt)

	roadmapGroup := api.Group("/roadmaps")
	roadmapGroup.POST("", p.Roadmap.CreateRoadmap)
	roadmapGroup.GET("/:roadmapId", p.Roadmap.GetRoadmap)

	materialGroup := api.Group("/materials")
	materialGroup.GET("/:materialId/grounding", p.Material.GetGroundingData)

	api.GET("/events", p.Events.Stream)
}
