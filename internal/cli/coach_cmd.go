package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/attune/internal/domain"
)

func newCoachCmd(app *App) *cobra.Command {
	var userFlag, contextFlag string

	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Live coaching panel: tone while you type, advice when you send",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("coach needs an interactive terminal; use 'classify' or 'advise' instead")
			}

			model := newCoachModel(app, userFlag, domain.ContextID(contextFlag))
			_, err := tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User whose profile learns from sent messages")
	cmd.Flags().StringVar(&contextFlag, "context", "", "Conversation context")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
