// Package statuscmder provides the status command for checking the cosmo
// server and summarizing what it knows.
package statuscmder

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/config"
)

const statusLongDesc string = `Check the cosmo server and summarize the knowledge base.

Queries the server's health endpoint and lists every indexed document with
its chunk count.

Examples:
  cosmo status
  cosmo status --target http://localhost:5174`

const statusShortDesc string = "Check the server and knowledge base"

type statusCommander struct {
	target string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
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

func (c *statusCommander) run() error {
	client := api.NewClient(c.target)
	ctx := context.Background()

	var health *api.Health
	err := cliui.Step(os.Stderr, "Checking server", func() error {
		var err error
		health, err = client.Health(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("checking %s: %w", c.target, err)
	}

	var stats *api.Stats
	err = cliui.Step(os.Stderr, "Fetching knowledge base", func() error {
		var err error
		stats, err = client.Stats(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Status:   "), cliui.NameStyle.Render(health.Status))
	fmt.Printf("  %s  %d\n", cliui.KeyStyle.Render("Documents:"), stats.TotalDocuments)
	fmt.Printf("  %s  %d\n\n", cliui.KeyStyle.Render("Chunks:   "), stats.TotalChunks)

	if len(stats.Sources) == 0 {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No documents ingested yet. Try: cosmo upload <file>"))
		return nil
	}

	names := make([]string, 0, len(stats.Sources))
	maxLen := 0
	for name := range stats.Sources {
		names = append(names, name)
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		source := stats.Sources[name]
		fmt.Printf("  %s %-*s  %s\n",
			cliui.DimStyle.Render("-"),
			maxLen, name,
			cliui.DimStyle.Render(fmt.Sprintf("%s, %d chunks", source.Type, source.Chunks)),
		)
	}

	fmt.Println()
	return nil
}
