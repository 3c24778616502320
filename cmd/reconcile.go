package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/logger"
)

var reconcileGuild string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "assign level roles to every member of a guild from stored XP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		guildID, err := snowflake.Parse(reconcileGuild)
		if err != nil {
			return fmt.Errorf("invalid --guild %q: %w", reconcileGuild, err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err = cfg.Validate(); err != nil {
			return err
		}

		db, err := openDatabase(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		b := questbot.New(*cfg, version, commit)
		if err = b.SetupBot(); err != nil {
			return fmt.Errorf("failed to setup bot: %w", err)
		}
		b.InitServices(db, nil)

		start := time.Now()
		report, err := b.Reconciler.ReconcileAll(cmd.Context(), guildID)
		if err != nil {
			return err
		}

		logger.LogSystem("Reconciliation finished",
			slog.String("guild_id", guildID.String()),
			slog.Int("members", report.Members),
			slog.Int("granted", report.Granted),
			slog.Int("removed", report.Removed),
			slog.Int("missing", report.Missing),
			slog.Int("failed", report.Failed),
			slog.Int("created", report.Created),
			slog.Bool("changed", report.Changed()),
			slog.Duration("took", time.Since(start)),
		)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileGuild, "guild", "", "guild ID to reconcile")
	_ = reconcileCmd.MarkFlagRequired("guild")
	rootCmd.AddCommand(reconcileCmd)
}
