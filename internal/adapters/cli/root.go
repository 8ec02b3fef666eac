package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand builds the helmsman command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "helmsman",
		Short:         "Automated fleet controller for the SpaceTraders game",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(newRunCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
