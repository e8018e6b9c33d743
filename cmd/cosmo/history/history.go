// Package historycmder provides the history command for reviewing and
// clearing the saved chat transcript.
package historycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/dotdir"
	"github.com/cosmohq/cosmo/pkg/utils"
)

const historyLongDesc string = `Show the transcript of the last chat session.

Transcripts are saved to the .cosmo/ directory when a chat session ends.
Only the local transcript is affected; use /clear inside "cosmo chat" to
reset the server-side conversation history.

Examples:
  cosmo history
  cosmo history clear`

const historyShortDesc string = "Show the last chat transcript"

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runShow()
		},
	}

	cmd.AddCommand(newClearCmd())

	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved chat transcript",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runClear()
		},
	}
}

func runShow() error {
	manager := dotdir.NewManager()

	transcript, err := manager.LoadTranscript("")
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}

	if transcript == nil || len(transcript.Messages) == 0 {
		fmt.Printf("  %s No saved transcript. Start one with: cosmo chat\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Saved:"), cliui.ValueStyle.Render(transcript.SavedAt.Local().Format("2006-01-02 15:04")))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Mode: "), cliui.NameStyle.Render(transcript.Mode))

	for i, msg := range transcript.Messages {
		preview := utils.Truncate(msg.Content, 72)
		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.KeyStyle.Render("["+msg.Role+"]"),
			cliui.ValueStyle.Render(preview),
		)
	}

	fmt.Println()
	return nil
}

func runClear() error {
	manager := dotdir.NewManager()

	if err := manager.ClearTranscript(""); err != nil {
		return fmt.Errorf("clearing transcript: %w", err)
	}

	fmt.Printf("  %s Transcript cleared\n", cliui.SuccessMark)
	return nil
}
