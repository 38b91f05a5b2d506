package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/attune/internal/classify"
	"github.com/alexanderramin/attune/internal/cli/formatter"
	"github.com/alexanderramin/attune/internal/domain"
)

func newClassifyCmd(app *App) *cobra.Command {
	var contextFlag string

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify the tone of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			res := app.Engine.ClassifyTone(cmd.Context(), classify.Request{
				Text:    text,
				Context: domain.ContextID(contextFlag),
			})

			fmt.Fprint(cmd.OutOrStdout(),
				formatter.FormatClassification(res.Classification, res.ContextScores))
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFlag, "context", "", "Conversation context (conflict, repair, logistics, ...)")

	return cmd
}
