package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/attune/internal/cli/formatter"
	"github.com/alexanderramin/attune/internal/domain"
)

// seedQuestion is one questionnaire item: each answer credits one style.
type seedQuestion struct {
	title   string
	options []huh.Option[domain.AttachmentStyle]
}

var seedQuestions = []seedQuestion{
	{
		title: "When a reply takes hours, you usually...",
		options: []huh.Option[domain.AttachmentStyle]{
			huh.NewOption("Re-read the thread and worry something changed", domain.StyleAnxious),
			huh.NewOption("Barely notice — you were busy anyway", domain.StyleAvoidant),
			huh.NewOption("Swing between annoyed and apologetic", domain.StyleDisorganized),
			huh.NewOption("Assume they'll answer when they can", domain.StyleSecure),
		},
	},
	{
		title: "After an argument, your first instinct is...",
		options: []huh.Option[domain.AttachmentStyle]{
			huh.NewOption("Seek reassurance that you're still okay", domain.StyleAnxious),
			huh.NewOption("Take space and cool off alone", domain.StyleAvoidant),
			huh.NewOption("Reach out, then pull back, then reach out", domain.StyleDisorganized),
			huh.NewOption("Name what happened and suggest a repair", domain.StyleSecure),
		},
	},
	{
		title: "When someone gets too close too fast, you...",
		options: []huh.Option[domain.AttachmentStyle]{
			huh.NewOption("Feel relieved — closeness is the goal", domain.StyleAnxious),
			huh.NewOption("Feel crowded and step back", domain.StyleAvoidant),
			huh.NewOption("Want it and dread it at the same time", domain.StyleDisorganized),
			huh.NewOption("Enjoy it and keep your own pace", domain.StyleSecure),
		},
	},
	{
		title: "A hard conversation is coming up. You...",
		options: []huh.Option[domain.AttachmentStyle]{
			huh.NewOption("Rehearse every possible bad outcome", domain.StyleAnxious),
			huh.NewOption("Postpone it as long as possible", domain.StyleAvoidant),
			huh.NewOption("Can't predict how you'll react", domain.StyleDisorganized),
			huh.NewOption("Pick a calm moment and raise it", domain.StyleSecure),
		},
	},
}

func newSeedCmd(app *App) *cobra.Command {
	var userFlag string
	var anxious, avoidant, disorganized, secure float64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed an initial attachment estimate",
		Long: "Seed an initial attachment estimate from a short questionnaire, or\n" +
			"directly from per-style scores. The seed's influence fades as real\n" +
			"messages are observed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			scores := domain.AttachmentScores{
				Anxious:      anxious,
				Avoidant:     avoidant,
				Disorganized: disorganized,
				Secure:       secure,
			}

			if scores.Sum() == 0 {
				if app.IsInteractive == nil || !app.IsInteractive() {
					return fmt.Errorf("no scores given; pass --anxious/--avoidant/--disorganized/--secure or run interactively")
				}
				answered, err := runSeedQuestionnaire()
				if err != nil {
					return err
				}
				scores = answered
			}

			if err := app.Engine.SeedPrior(cmd.Context(), userFlag, scores); err != nil {
				return err
			}

			est, err := app.Engine.GetAttachmentEstimate(cmd.Context(), userFlag)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(),
				formatter.FormatEstimate(est, app.Engine.LearningDays()))
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User to seed")
	cmd.Flags().Float64Var(&anxious, "anxious", 0, "Anxious score")
	cmd.Flags().Float64Var(&avoidant, "avoidant", 0, "Avoidant score")
	cmd.Flags().Float64Var(&disorganized, "disorganized", 0, "Disorganized score")
	cmd.Flags().Float64Var(&secure, "secure", 0, "Secure score")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// runSeedQuestionnaire asks the four questions and folds answers into raw
// style scores.
func runSeedQuestionnaire() (domain.AttachmentScores, error) {
	answers := make([]domain.AttachmentStyle, len(seedQuestions))

	groups := make([]*huh.Group, len(seedQuestions))
	for i, q := range seedQuestions {
		groups[i] = huh.NewGroup(
			huh.NewSelect[domain.AttachmentStyle]().
				Title(q.title).
				Options(q.options...).
				Value(&answers[i]),
		)
	}

	if err := huh.NewForm(groups...).Run(); err != nil {
		return domain.AttachmentScores{}, err
	}

	var scores domain.AttachmentScores
	for _, style := range answers {
		scores.Add(style, 1)
	}
	return scores, nil
}
