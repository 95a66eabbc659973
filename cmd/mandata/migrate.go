package main

import (
	"github.com/spf13/cobra"

	"mandata/internal/platform/config"
	"mandata/internal/platform/database"
	"mandata/internal/platform/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogFormat, cfg.LogLevel)

			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
