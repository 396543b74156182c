package main

import (
	"github.com/spf13/cobra"

	dbpkg "github.com/yungbote/neurobridge-content/internal/data/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := dbpkg.NewService(cfg.DatabaseConfig(), log)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.AutoMigrateAll(); err != nil {
				log.Error("migration failed", "error", err)
				return err
			}
			log.Info("migration complete", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
