package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"learnez/internal/infra"
	"learnez/pkg/logger"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var rootCmd = &cobra.Command{
	Use:   "learnez",
	Short: "Adaptive quiz and learning roadmap service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := infra.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err := logger.New(cfg.AppEnv)
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := infra.InitPostgresql(cfg, log)
		if err != nil {
			return err
		}
		defer infra.ClosePostgresql(db, log)

		if err := infra.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("database schema is up to date")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("learnez", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}
