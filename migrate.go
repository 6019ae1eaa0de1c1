package main

import (
	"github.com/spf13/cobra"
	"github.com/svrforum/ContactHatch/api/config"
	"github.com/svrforum/ContactHatch/api/database"
	"github.com/svrforum/ContactHatch/api/handlers"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			handlers.InitLogger(cfg.Development())

			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}

			handlers.LogInfo("Migrations complete")
			return nil
		},
	}
}
