// Package askcmder provides the ask command for one-shot questions
// against the cosmo server.
package askcmder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/config"
	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/markdown"
	"github.com/cosmohq/cosmo/pkg/stream"
)

type askCommander struct {
	target   string
	mode     string
	nResults int
	render   bool
	debug    bool

	logger *slog.Logger
}

const askLongDesc string = `Ask a one-shot question against the ingested documents.

The answer streams token by token from the cosmo server. Inline citation
markers like [1] refer to the retrieved source chunks the answer is
grounded on.

With --render the command waits for the full answer and prints it with
terminal styling (highlighted citations, formatted code blocks) instead
of streaming raw text.

Examples:
  cosmo ask "What is a reducer?"
  cosmo ask --mode deep --n-results 8 "How does reconciliation work?"
  cosmo ask --render "Show me a useState example"`

const askShortDesc string = "Ask a one-shot question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddStringFlag(cmd, config.Flags, config.FlagMode, &cmder.mode)
	config.AddIntFlag(cmd, config.Flags, config.FlagNResults, &cmder.nResults)
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Wait for the full answer and print it with terminal styling")

	return cmd
}

func (c *askCommander) run(question string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question is required")
	}

	c.logger.Debug("asking question",
		"target", c.target,
		"mode", c.mode,
		"nResults", c.nResults,
	)

	client := stream.NewClient(c.target)

	var (
		full    strings.Builder
		sendErr error
	)

	cb := stream.Callbacks{
		OnToken: func(token string) {
			full.WriteString(token)
			if !c.render {
				fmt.Print(token)
			}
		},
		OnError: func(err error) {
			sendErr = err
		},
	}

	if c.render {
		err := cliui.Step(os.Stderr, "Thinking", func() error {
			session := client.Ask(question, c.mode, c.nResults, cb)
			<-session.Done()
			return sendErr
		})
		if err != nil {
			return err
		}
	} else {
		session := client.Ask(question, c.mode, c.nResults, cb)
		<-session.Done()
		if sendErr != nil {
			fmt.Println()
			return sendErr
		}
	}

	nodes := markdown.Parse(full.String())

	if c.render {
		fmt.Println()
		fmt.Println(cliui.RenderNodes(nodes))
	}

	if citations := cliui.Citations(nodes); len(citations) > 0 {
		refs := make([]string, 0, len(citations))
		for _, n := range citations {
			refs = append(refs, fmt.Sprintf("[%d]", n))
		}
		fmt.Printf("\n\n  %s %s\n",
			cliui.KeyStyle.Render("Sources:"),
			cliui.DimStyle.Render(strings.Join(refs, " ")),
		)
	} else {
		fmt.Println()
	}

	return nil
}
