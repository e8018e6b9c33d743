// Package quizcmder provides the quiz command for listing, taking, and
// reviewing generated quizzes.
package quizcmder

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/dotdir"
)

const quizLongDesc string = `List, take, and review quizzes generated from your documents.

Quizzes are produced by the cosmo server from ingested material. Taking a
quiz walks through its questions in the terminal; short answers are graded
by the server, true/false and multiple choice locally. Graded attempts are
recorded so past scores can be reviewed.

Use subcommands:
  cosmo quiz list                 List available quizzes
  cosmo quiz take <id>            Take a quiz
  cosmo quiz results              Review recorded attempts

Examples:
  cosmo quiz list
  cosmo quiz take react-basics
  cosmo quiz results --quiz react-basics`

const quizShortDesc string = "List, take, and review quizzes"

func NewQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: quizShortDesc,
		Long:  quizLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newTakeCmd())
	cmd.AddCommand(newResultsCmd())

	return cmd
}

// resolveResultsPath returns the SQLite file for recorded attempts,
// defaulting to results.db inside the resolved .cosmo directory.
func resolveResultsPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	dir, err := dotdir.NewManager().Target("")
	if err != nil {
		return "", fmt.Errorf("resolving results path: %w", err)
	}

	return filepath.Join(dir, "results.db"), nil
}
