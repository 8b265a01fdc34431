// Package main is the entry point for the LockieMedia terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "lockie",
		Short: "LockieMedia in your terminal",
		Long: `lockie - LockieMedia tasks in the terminal with Vim keybindings

To get started:
  1. Run 'lockie init' to create a config file
  2. Run 'lockie login' and paste the API key of your data service
  3. Run 'lockie'`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/lockiemedia/config.yaml)")

	root.AddCommand(
		newInitCmd(&configPath),
		newLoginCmd(),
		newLogoutCmd(),
		newServeCmd(&configPath),
		newParseCmd(),
	)

	return root
}
