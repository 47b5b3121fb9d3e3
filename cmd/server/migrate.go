package main

import (
	"errors"

	"alcyxob/liftlog/internal/config"
	"alcyxob/liftlog/internal/repository/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|version|redo|down-to N|up-to N]",
	Short: "Run schema migrations against the postgres backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != config.DriverPostgres {
			return errors.New("migrations apply to the postgres driver only; mongo indexes are created by serve")
		}
		db, err := postgres.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer postgres.Close(db)
		return postgres.Migrate(cmd.Context(), db, args[0], args[1:]...)
	},
}
