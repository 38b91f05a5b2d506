package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/attune/internal/cli/formatter"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or reset a learned attachment profile",
	}

	cmd.AddCommand(
		newProfileShowCmd(app),
		newProfileResetCmd(app),
	)

	return cmd
}

func newProfileShowCmd(app *App) *cobra.Command {
	var userFlag string
	var historyN int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current attachment estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			est, err := app.Engine.GetAttachmentEstimate(ctx, userFlag)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatEstimate(est, app.Engine.LearningDays()))

			if historyN > 0 {
				events, err := app.Engine.History(ctx, userFlag, historyN)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, formatter.FormatHistory(events))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User to inspect")
	cmd.Flags().IntVar(&historyN, "history", 0, "Also show the N most recent profile events")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newProfileResetCmd(app *App) *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all learned state for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.ResetProfile(cmd.Context(), userFlag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile for %s reset.\n", userFlag)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User to reset")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
