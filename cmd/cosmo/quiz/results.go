package quizcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/config"
	"github.com/cosmohq/cosmo/pkg/results"
	"github.com/cosmohq/cosmo/pkg/utils"
)

const resultsLongDesc string = `Review recorded quiz attempts.

Lists past attempts newest first. Pass an attempt id to see the graded
answers of a single attempt. Use --quiz to filter by quiz.

Examples:
  cosmo quiz results
  cosmo quiz results --quiz react-basics --limit 5
  cosmo quiz results 2f1c9c8a-55d1-4df6-96a3-0b9f3e1c7a44`

const resultsShortDesc string = "Review recorded quiz attempts"

type resultsCommander struct {
	resultsPath string
	quizID      string
	limit       int
}

func newResultsCmd() *cobra.Command {
	cmder := &resultsCommander{}

	cmd := &cobra.Command{
		Use:   "results [attempt-id]",
		Short: resultsShortDesc,
		Long:  resultsLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagResultsPath,
			})

			cmder.resultsPath = v.GetString("quiz.results_path")
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				return cmder.runShow(args[0])
			}
			return cmder.runList()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagResultsPath, &cmder.resultsPath)
	cmd.Flags().StringVar(&cmder.quizID, "quiz", "", "Only show attempts for this quiz id")
	cmd.Flags().IntVar(&cmder.limit, "limit", 20, "Maximum number of attempts to show")

	return cmd
}

func (c *resultsCommander) openStore() (*results.Store, error) {
	path, err := resolveResultsPath(c.resultsPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no recorded attempts yet, take a quiz first")
	}

	store, err := results.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening results store: %w", err)
	}
	return store, nil
}

func (c *resultsCommander) runList() error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	attempts, err := store.List(context.Background(), c.quizID, c.limit)
	if err != nil {
		return fmt.Errorf("listing attempts: %w", err)
	}

	if len(attempts) == 0 {
		fmt.Printf("  %s\n", cliui.DimStyle.Render("No recorded attempts."))
		return nil
	}

	fmt.Println()
	for _, attempt := range attempts {
		fmt.Printf("  %s  %s %s\n",
			cliui.DimStyle.Render(attempt.TakenAt.Local().Format("2006-01-02 15:04")),
			cliui.ValueStyle.Render(attempt.QuizTitle),
			cliui.NameStyle.Render(fmt.Sprintf("%.0f%%", attempt.Percent())),
		)
		fmt.Printf("    %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%s  %d correct, %d partial, %d incorrect",
				attempt.ID, attempt.Correct, attempt.Partial, attempt.Incorrect)),
		)
	}
	fmt.Println()

	return nil
}

func (c *resultsCommander) runShow(id string) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	attempt, err := store.Get(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s  %s\n",
		cliui.KeyStyle.Render("Quiz: "),
		cliui.ValueStyle.Render(attempt.QuizTitle),
	)
	fmt.Printf("  %s  %s\n",
		cliui.KeyStyle.Render("Taken:"),
		cliui.ValueStyle.Render(attempt.TakenAt.Local().Format("2006-01-02 15:04")),
	)
	fmt.Printf("  %s  %.0f%%\n\n",
		cliui.KeyStyle.Render("Score:"),
		attempt.Percent(),
	)

	for i, answer := range attempt.Answers {
		var mark string
		switch answer.Score {
		case "correct":
			mark = cliui.SuccessMark
		case "partial":
			mark = cliui.StepStyle.Render("~")
		default:
			mark = cliui.FailMark
		}

		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			mark,
			cliui.ValueStyle.Render(utils.Truncate(answer.Question, 64)),
		)
		fmt.Printf("       %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("answered %q", utils.Truncate(answer.UserAnswer, 48))),
		)
	}

	fmt.Println()
	return nil
}
