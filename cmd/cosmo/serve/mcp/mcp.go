// Package mcpcmder provides the serve mcp cobra command.
package mcpcmder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/config"
	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/mcp"
	"github.com/cosmohq/cosmo/pkg/stream"
)

type mcpCommander struct {
	listen   string
	target   string
	mode     string
	nResults int
	debug    bool

	logger *slog.Logger
}

const mcpLongDesc string = `Run the MCP server.

Exposes the cosmo knowledge base to MCP clients over streamable HTTP at
/mcp. Two tools are served: ask_docs answers a question against the
ingested documents, and knowledge_stats reports what the server knows.
Requests are forwarded to the cosmo server at --target.

Examples:
  cosmo serve mcp
  cosmo serve mcp --listen :5175 --target http://localhost:5174`

const mcpShortDesc string = "Run the MCP server"

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
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

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddStringFlag(cmd, config.Flags, config.FlagMode, &cmder.mode)
	config.AddIntFlag(cmd, config.Flags, config.FlagNResults, &cmder.nResults)
	cmd.Flags().StringVar(&cmder.listen, "listen", ":5175", "Address for the MCP server to listen on")

	return cmd
}

func (c *mcpCommander) run() error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithComponent("mcp"))

	server, err := mcp.NewServer(mcp.Config{
		Asker:    stream.NewClient(c.target),
		API:      api.NewClient(c.target),
		Mode:     c.mode,
		NResults: c.nResults,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.Handler())

	httpServer := &http.Server{
		Addr:              c.listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.logger.Info("starting MCP server",
		"listen", c.listen,
		"target", c.target,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}
