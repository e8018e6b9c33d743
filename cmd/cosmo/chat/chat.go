// Package chatcmder provides the chat command for interactive study
// sessions against the cosmo server.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/config"
	"github.com/cosmohq/cosmo/pkg/dotdir"
	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/stream"
)

var (
	userPrompt  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	cosmoPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("cosmo> ")
)

type chatCommander struct {
	target   string
	mode     string
	nResults int
	debug    bool

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session against the ingested documents.

Each question streams its answer live. The session transcript is saved to
the .cosmo/ directory so "cosmo history" can show it later.

Slash commands inside the session:
  /mode <name>   Switch the answer mode (e.g. quick, deep)
  /stats         Show what the server currently knows
  /clear         Clear the server-side conversation history
  /exit          End the session

Examples:
  cosmo chat
  cosmo chat --mode deep --target http://localhost:5174`

const chatShortDesc string = "Interactive chat against your documents"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagTarget,
				config.FlagMode,
				config.FlagNResults,
			})

			cmder.target = v.GetString("client.target")
			cmder.mode = v.GetString("chat.mode")
			cmder.nResults = v.GetInt("chat.n_results")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(os.Stdin)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddStringFlag(cmd, config.Flags, config.FlagMode, &cmder.mode)
	config.AddIntFlag(cmd, config.Flags, config.FlagNResults, &cmder.nResults)

	return cmd
}

func (c *chatCommander) run(input *os.File) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	streamClient := stream.NewClient(c.target)
	apiClient := api.NewClient(c.target)

	manager := dotdir.NewManager()
	transcript := &dotdir.Transcript{Mode: c.mode}

	fmt.Println()
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Server:"),
		cliui.ValueStyle.Render(c.target),
	)
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Mode:  "),
		cliui.NameStyle.Render(c.mode),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(input)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if c.handleSlash(line, apiClient) {
				break
			}
			continue
		}

		answer, err := c.sendAndStream(streamClient, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
			continue
		}

		transcript.Messages = append(transcript.Messages,
			dotdir.TranscriptMessage{Role: "user", Content: line},
			dotdir.TranscriptMessage{Role: "assistant", Content: answer},
		)
		transcript.Mode = c.mode

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()

	if len(transcript.Messages) == 0 {
		return nil
	}

	transcript.SavedAt = time.Now().UTC()
	if err := manager.SaveTranscript(transcript, ""); err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}

	return nil
}

// handleSlash processes a slash command. Returns true when the session
// should end.
func (c *chatCommander) handleSlash(line string, apiClient *api.Client) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "/exit", "/quit":
		return true

	case "/mode":
		if len(fields) < 2 {
			fmt.Printf("  %s %s\n\n",
				cliui.KeyStyle.Render("Mode:"),
				cliui.NameStyle.Render(c.mode),
			)
			return false
		}
		c.mode = fields[1]
		fmt.Printf("  %s Switched to %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(c.mode))

	case "/stats":
		stats, err := apiClient.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
			return false
		}
		fmt.Printf("  %s %d documents, %d chunks\n",
			cliui.KeyStyle.Render("Knowledge:"),
			stats.TotalDocuments,
			stats.TotalChunks,
		)
		for name, source := range stats.Sources {
			fmt.Printf("    %s %s (%d chunks)\n",
				cliui.DimStyle.Render("-"),
				cliui.ValueStyle.Render(name),
				source.Chunks,
			)
		}
		fmt.Println()

	case "/clear":
		if err := apiClient.ClearHistory(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
			return false
		}
		fmt.Printf("  %s History cleared\n\n", cliui.SuccessMark)

	default:
		fmt.Printf("  %s Unknown command %q. Try /mode, /stats, /clear, or /exit.\n\n",
			cliui.FailMark, fields[0])
	}

	return false
}

// sendAndStream asks one question and streams the answer to stdout.
// Returns the full answer text.
func (c *chatCommander) sendAndStream(client *stream.Client, question string) (string, error) {
	c.logger.Debug("sending chat question",
		"target", c.target,
		"mode", c.mode,
		"nResults", c.nResults,
	)

	fmt.Print(cosmoPrompt)

	var (
		full    strings.Builder
		sendErr error
	)

	session := client.Ask(question, c.mode, c.nResults, stream.Callbacks{
		OnToken: func(token string) {
			fmt.Print(token)
			full.WriteString(token)
		},
		OnError: func(err error) {
			sendErr = err
		},
	})

	<-session.Done()

	if sendErr != nil {
		fmt.Println()
		return "", sendErr
	}

	return full.String(), nil
}
