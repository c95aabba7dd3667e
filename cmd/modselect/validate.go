package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load every configured catalog and check its integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d types, %d capabilities from %d catalogs\n",
				cat.Len(), len(cat.Capabilities()), len(cfg.Catalogs()))
			return nil
		},
	}
}
