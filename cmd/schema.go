package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "create the database tables and indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openDatabase(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		slog.Info("Schema is up to date", slog.String("type", "db"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
