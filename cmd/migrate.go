package main

import (
	"catalog-service/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		conn, err := database.Open(&cfg.DB)
		if err != nil {
			return err
		}
		defer database.Close(conn)

		if err := database.Migrate(conn); err != nil {
			return err
		}
		log.Info("Schema migrated", zap.String("driver", cfg.DB.Driver))
		return nil
	},
}
