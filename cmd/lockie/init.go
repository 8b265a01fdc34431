package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockiemedia/lockie/internal/config"
)

func newInitCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return fmt.Errorf("failed to get config path: %w", err)
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
				fmt.Fprintln(cmd.OutOrStdout(), "Use --force to overwrite it.")
				return nil
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := config.SaveTo(config.DefaultConfig(), path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file created: %s\n\n", path)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Point server.url at your data service")
			fmt.Fprintln(out, "  2. Run 'lockie login' to store your API key")
			fmt.Fprintln(out, "  3. Run 'lockie' to start")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	return cmd
}
