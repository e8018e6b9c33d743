// Package servecmder provides the serve command with subcommands for
// running local cosmo services.
package servecmder

import (
	"github.com/spf13/cobra"

	mcpcmder "github.com/cosmohq/cosmo/cmd/cosmo/serve/mcp"
	stubcmder "github.com/cosmohq/cosmo/cmd/cosmo/serve/stub"
)

const serveLongDesc string = `Run local cosmo services.

Use subcommands to run individual services:
  cosmo serve stub     Run the offline stub server
  cosmo serve mcp      Run the MCP server`

const serveShortDesc string = "Run local cosmo services"

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
	}

	cmd.AddCommand(stubcmder.NewStubCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())

	return cmd
}
