// Package cosmocmder
package cosmocmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/cosmohq/cosmo/cmd/cosmo/ask"
	chatcmder "github.com/cosmohq/cosmo/cmd/cosmo/chat"
	configcmder "github.com/cosmohq/cosmo/cmd/cosmo/config"
	historycmder "github.com/cosmohq/cosmo/cmd/cosmo/history"
	quizcmder "github.com/cosmohq/cosmo/cmd/cosmo/quiz"
	servecmder "github.com/cosmohq/cosmo/cmd/cosmo/serve"
	statuscmder "github.com/cosmohq/cosmo/cmd/cosmo/status"
	uploadcmder "github.com/cosmohq/cosmo/cmd/cosmo/upload"
	versioncmder "github.com/cosmohq/cosmo/cmd/version"
)

const cosmoLongDesc string = `Cosmo is a study companion for your documents.

Ask questions against your ingested notes and books:
  cosmo ask "What is a reducer?"    One-shot question with a streamed answer
  cosmo chat                        Interactive chat session
  cosmo quiz take react-basics      Take a generated quiz
  cosmo upload notes.md             Ingest a document`

const cosmoShortDesc string = "Cosmo - Study Companion"

func NewCosmoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cosmo",
		Short: cosmoShortDesc,
		Long:  cosmoLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml (default: ./.cosmo or ~/.cosmo)")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(quizcmder.NewQuizCmd())
	cmd.AddCommand(uploadcmder.NewUploadCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
