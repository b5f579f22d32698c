package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"learnez/internal/models/db_models"
	"learnez/pkg/logger"
)

func InitPostgresql(cfg *Config, log *logger.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if !cfg.IsProduction() {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("postgres connected")
	return db, nil
}

// Migrate enables pgvector and creates or updates every table.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("enable pgvector: %w", err)
		}
	}
	if err := db.AutoMigrate(
		&db_models.QuizAttempt{},
		&db_models.Roadmap{},
		&db_models.RoadmapMilestone{},
		&db_models.Material{},
		&db_models.MaterialChunk{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, log *logger.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("get database handle failed", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close postgres failed", "error", err)
		return
	}
	log.Info("postgres connection closed")
}
