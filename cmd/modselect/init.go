package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/modselect/internal/config"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the .modselect directory with a default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			if err := config.InitDir(dir); err != nil {
				return fmt.Errorf("initialise %s: %w", dir, err)
			}
			cfg, err := config.NewConfig(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialised %s\n", cfg.StateDir)
			return nil
		},
	}
}
