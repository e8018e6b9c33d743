package quizcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/config"
	"github.com/cosmohq/cosmo/pkg/utils"
)

const listLongDesc string = `List the quizzes the cosmo server has available.

Shows each quiz's id, title, scope, and question breakdown. Use the id
with "cosmo quiz take".

Examples:
  cosmo quiz list`

const listShortDesc string = "List available quizzes"

type listCommander struct {
	target string
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagTarget,
			})

			cmder.target = v.GetString("client.target")
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)

	return cmd
}

func (c *listCommander) run() error {
	client := api.NewClient(c.target)

	quizzes, err := client.ListQuizzes(context.Background())
	if err != nil {
		return fmt.Errorf("listing quizzes: %w", err)
	}

	if len(quizzes) == 0 {
		fmt.Printf("  %s\n", cliui.DimStyle.Render("No quizzes available yet."))
		return nil
	}

	fmt.Println()
	for _, quiz := range quizzes {
		fmt.Printf("  %s  %s\n",
			cliui.KeyStyle.Render(quiz.ID),
			cliui.ValueStyle.Render(quiz.Title),
		)

		parts := make([]string, 0, len(quiz.Sections))
		for _, section := range quiz.Sections {
			parts = append(parts, fmt.Sprintf("%d %s", section.Count, strings.ReplaceAll(section.Type, "_", " ")))
		}

		fmt.Printf("    %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%s, %s (%s)",
				quiz.Scope, utils.Plural(quiz.TotalQuestions, "question"), strings.Join(parts, ", "))),
		)
	}
	fmt.Println()

	return nil
}
