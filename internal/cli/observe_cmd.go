package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/attune/internal/cli/formatter"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/engine"
)

func newObserveCmd(app *App) *cobra.Command {
	var userFlag, contextFlag string

	cmd := &cobra.Command{
		Use:   "observe [text...]",
		Short: "Learn attachment signals from a sent message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := app.Engine.Observe(cmd.Context(), engine.ObserveRequest{
				UserID:  userFlag,
				Text:    strings.Join(args, " "),
				Context: domain.ContextID(contextFlag),
			})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(),
				formatter.FormatEstimate(est, app.Engine.LearningDays()))
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User the message belongs to")
	cmd.Flags().StringVar(&contextFlag, "context", "", "Conversation context")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
