package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/attune/internal/engine"
)

// App holds the engine and environment hooks used by CLI commands.
type App struct {
	Engine *engine.Engine

	// IsInteractive reports whether stdin is a terminal; the coach TUI
	// refuses to start without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "attune" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "attune",
		Short: "Tone-aware message coach",
		Long: "Attune analyzes a message before you send it: tone classification,\n" +
			"attachment-style learning, and ranked communication advice.",
	}

	root.AddCommand(
		newClassifyCmd(app),
		newAdviseCmd(app),
		newObserveCmd(app),
		newProfileCmd(app),
		newSeedCmd(app),
		newCoachCmd(app),
	)

	return root
}
