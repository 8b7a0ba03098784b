package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archive_backend/internals/configs"
	database "archive_backend/internals/databases"
)

func MigrateCommand(cfg *configs.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := configs.NewLogger(*cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Connect(*cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("migrations applied", zap.Int("models", len(database.Models())))
			return nil
		},
	}
}
