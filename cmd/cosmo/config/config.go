// Package configcmder provides the config command for managing persistent
// cosmo configuration stored in the .cosmo/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent cosmo configuration.

Configuration is stored as config.toml in the .cosmo/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  client.target, chat.mode, chat.n_results,
  quiz.results_path, stub.listen, upload.workers

Use subcommands to get, set, or list configuration values:
  cosmo config set <key> <value>    Set a configuration value
  cosmo config get <key>            Get a configuration value
  cosmo config list                 List all configuration values

Examples:
  cosmo config set client.target http://localhost:5174
  cosmo config set chat.mode deep
  cosmo config get chat.n_results
  cosmo config list`

const configShortDesc string = "Manage persistent cosmo configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
