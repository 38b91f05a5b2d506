package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/attune/internal/cli/formatter"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/engine"
)

func newAdviseCmd(app *App) *cobra.Command {
	var contextFlag, userFlag string
	var limit int
	var verifyFlag bool

	cmd := &cobra.Command{
		Use:   "advise [text...]",
		Short: "Rank communication advice for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")

			res, err := app.Engine.RankAdvice(ctx, engine.RankRequest{
				Text:    text,
				Context: domain.ContextID(contextFlag),
				UserID:  userFlag,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			ranked := res.Advice
			if verifyFlag {
				ranked = app.Engine.VerifyRanked(ctx, text, ranked)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatClassification(res.Classification, res.ContextScores))
			fmt.Fprintln(out)
			fmt.Fprint(out, formatter.FormatRanked(ranked))
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFlag, "context", "", "Conversation context (conflict, repair, logistics, ...)")
	cmd.Flags().StringVar(&userFlag, "user", "", "User whose attachment profile tunes the ranking")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of suggestions")
	cmd.Flags().BoolVar(&verifyFlag, "verify", false, "Filter suggestions through the fit verifier")

	return cmd
}
