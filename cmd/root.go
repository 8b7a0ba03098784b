package cmd

import (
	"github.com/spf13/cobra"

	"archive_backend/internals/configs"
)

// RootCommand creates the CLI; running it without a subcommand serves HTTP.
func RootCommand(cfg *configs.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "archive",
		Short:         "Public submission archive API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := ServeCommand(cfg)
	rootCmd.AddCommand(serveCmd, MigrateCommand(cfg))
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	return rootCmd
}
