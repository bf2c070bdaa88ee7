package main

import (
	"wanderlust-service/internal/infrastructure/persistence"

	"github.com/spf13/cobra"
)

func getMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema to the latest version",
		Long: `Migrate runs GORM AutoMigrate over every table of the service.

It adds missing tables, columns and indexes. It never drops columns or
tables, so it is safe to run against a populated database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := persistence.NewPostgres(e.cfg.PostgresURI, e.cfg.LogLevel == "debug")
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			e.log.Info("Migrating schema")
			if err := persistence.Migrate(db); err != nil {
				return err
			}
			e.log.Info("Schema is up to date")
			return nil
		},
	}
}
