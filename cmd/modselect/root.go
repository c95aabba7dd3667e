package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/config"
	"github.com/kingrea/modselect/internal/logging"
	"github.com/kingrea/modselect/plugins"
)

const (
	FlagProject = "project"
	FlagRequire = "require"
	FlagOutput  = "output"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modselect",
		Short: "Pick and fully close module types from a catalog",
		Long: `modselect loads type definitions from the catalogs configured in
.modselect/config.yaml and walks you through choosing a module. Open generic
types are closed by picking a type for every parameter in turn.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	cmd.PersistentFlags().StringP(FlagProject, "C", "", "project directory (defaults to the working directory)")

	cmd.AddCommand(
		newInitCommand(),
		newValidateCommand(),
		newListCommand(),
		newResolveCommand(),
		newLogCommand(),
	)
	return cmd
}

// projectDir returns --project or the working directory.
func projectDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString(FlagProject)
	if err != nil {
		return "", err
	}
	if dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	return config.NewConfig(dir)
}

// loadCatalog reads the configuration and every configured catalog.
func loadCatalog(cmd *cobra.Command) (*config.Config, *catalog.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	cat, err := plugins.LoadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}

func openLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(cfg.ProjectDir)
}

// requirements returns --require values, falling back to the configured
// defaults when the flag was not given.
func requirements(cmd *cobra.Command, cfg *config.Config) (catalog.Constraints, error) {
	if cmd.Flags().Changed(FlagRequire) {
		values, err := cmd.Flags().GetStringArray(FlagRequire)
		if err != nil {
			return catalog.Constraints{}, err
		}
		return catalog.NewConstraints(values...), nil
	}
	return catalog.NewConstraints(cfg.DefaultRequire()...), nil
}

// outputFormat reads -o and checks it against allowed.
func outputFormat(cmd *cobra.Command, allowed ...string) (string, error) {
	format, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return "", err
	}
	for _, candidate := range allowed {
		if format == candidate {
			return format, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q (expected one of %v)", format, allowed)
}
