package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/modselect/internal/resolver"
)

const FlagFilter = "filter"

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the candidate types for a set of requirements",
		Args:  cobra.NoArgs,
		Example: `  # Every selectable type
  modselect list

  # Numeric types whose name contains "box", as YAML
  modselect list --require Numeric --filter box -o yaml`,
		RunE: runList,
	}
	cmd.Flags().StringArray(FlagRequire, nil, "requirement every listed type must meet (repeatable)")
	cmd.Flags().String(FlagFilter, "", "case-insensitive text the name or qualified name must contain")
	cmd.Flags().StringP(FlagOutput, "o", formatTable, "output format: table, yaml or json")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd, formatTable, formatYAML, formatJSON)
	if err != nil {
		return err
	}
	cfg, cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	constraints, err := requirements(cmd, cfg)
	if err != nil {
		return err
	}
	filter, err := cmd.Flags().GetString(FlagFilter)
	if err != nil {
		return err
	}
	set, err := resolver.NewBuilder(cat, 0).Build(cmd.Context(), constraints)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}
	return encodeCandidates(cmd.OutOrStdout(), set.Filter(filter), format)
}
