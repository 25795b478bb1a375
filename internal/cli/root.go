// Package cli implements the docqa command line.
package cli

import (
	"github.com/spf13/cobra"

	"docqa/internal/config"
	"docqa/internal/logging"
)

// NewRootCmd returns the docqa command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docqa",
		Short: "docqa - question answering over PDF documents",
		Long: `docqa extracts text from PDF documents, splits it into chunks and
answers questions by ranking chunks and sentences against the question.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/docqa/config.yaml)")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(AskCmd())
	rootCmd.AddCommand(TUICmd())
	return rootCmd
}

func configFromFlags(cmd *cobra.Command) (*config.AppConfig, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return loadConfig(path)
}

func configureLogging(cfg *config.AppConfig) {
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
}
