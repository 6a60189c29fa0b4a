package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/thankyoudiscord/waitlist/pkg/models"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending ledger migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()
			a.logger.Info().Msg("ledger schema is up to date")
			return nil
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the signup total and referral leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, models.NewStatsPayload(stats))
		},
	}
}

func newRecallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recall EMAIL",
		Short: "Look up a signup by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			signup, err := svc.Recall(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			payload := models.NewEntryPayload(signup, a.cfg.PublicURL)
			total, err := svc.TotalSignups(cmd.Context())
			if err != nil {
				return err
			}
			payload.SetProgress(total)
			return printJSON(cmd, payload)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
