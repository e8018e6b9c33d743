package quizcmder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/config"
	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/results"
)

const takeLongDesc string = `Take a quiz interactively.

Walks through the quiz's questions in the terminal. True/false and
multiple choice answers are graded locally against the reference answer;
short answers are sent to the cosmo server for grading. The graded attempt
is recorded so "cosmo quiz results" can show it later.

Examples:
  cosmo quiz take react-basics
  cosmo quiz take hooks-deep-dive --mode deep`

const takeShortDesc string = "Take a quiz"

type takeCommander struct {
	target      string
	mode        string
	resultsPath string
	debug       bool

	logger *slog.Logger
}

func newTakeCmd() *cobra.Command {
	cmder := &takeCommander{}

	cmd := &cobra.Command{
		Use:   "take <quiz-id>",
		Short: takeShortDesc,
		Long:  takeLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagTarget,
				config.FlagMode,
				config.FlagResultsPath,
			})

			cmder.target = v.GetString("client.target")
			cmder.mode = v.GetString("chat.mode")
			cmder.resultsPath = v.GetString("quiz.results_path")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddStringFlag(cmd, config.Flags, config.FlagMode, &cmder.mode)
	config.AddStringFlag(cmd, config.Flags, config.FlagResultsPath, &cmder.resultsPath)

	return cmd
}

func (c *takeCommander) run(quizID string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	client := api.NewClient(c.target)
	ctx := context.Background()

	quiz, err := client.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}

	evaluate := func(question, userAnswer, modelAnswer string) (*api.Evaluation, error) {
		return client.Evaluate(context.Background(), api.EvaluateRequest{
			Question:    question,
			UserAnswer:  userAnswer,
			ModelAnswer: modelAnswer,
			Mode:        c.mode,
		})
	}

	answers, aborted, err := runQuizTUI(quiz, evaluate)
	if err != nil {
		return fmt.Errorf("running quiz: %w", err)
	}

	if aborted && len(answers) == 0 {
		fmt.Printf("  %s Quiz abandoned, nothing recorded.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	attempt := &results.Attempt{
		QuizID:    quiz.ID,
		QuizTitle: quiz.Title,
		Mode:      c.mode,
		Total:     len(answers),
		TakenAt:   time.Now().UTC(),
		Answers:   answers,
	}

	for _, answer := range answers {
		switch answer.Score {
		case "correct":
			attempt.Correct++
		case "partial":
			attempt.Partial++
		default:
			attempt.Incorrect++
		}
	}

	path, err := resolveResultsPath(c.resultsPath)
	if err != nil {
		return err
	}

	store, err := results.NewStore(path)
	if err != nil {
		return fmt.Errorf("opening results store: %w", err)
	}
	defer store.Close()

	if err := store.Record(ctx, attempt); err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}

	fmt.Printf("\n  %s  %s\n",
		cliui.KeyStyle.Render("Quiz: "),
		cliui.ValueStyle.Render(quiz.Title),
	)
	fmt.Printf("  %s  %d correct, %d partial, %d incorrect\n",
		cliui.KeyStyle.Render("Score:"),
		attempt.Correct, attempt.Partial, attempt.Incorrect,
	)
	fmt.Printf("  %s  %.0f%%\n\n",
		cliui.KeyStyle.Render("Total:"),
		attempt.Percent(),
	)

	if aborted {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("(quit early, partial attempt recorded)"))
	}

	return nil
}
