package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/modselect/internal/config"
	"github.com/kingrea/modselect/internal/picker"
	"github.com/kingrea/modselect/internal/resolver"
	"github.com/kingrea/modselect/internal/tui"
)

const (
	FlagPicker      = "picker"
	FlagScript      = "script"
	FlagTimeout     = "timeout"
	FlagRecord      = "record"
	FlagParallelism = "parallelism"
)

// cancelledError reports a resolution that ended without a type.
type cancelledError struct {
	reason resolver.CancelReason
}

func (e *cancelledError) Error() string {
	return fmt.Sprintf("cancelled (%s)", e.reason)
}

func newResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Choose a module and close every generic parameter",
		Long: `Runs one resolution session. The chosen type is printed once every
generic parameter has been filled. Cancelling at any level prints
"cancelled (<reason>)" and exits with status 2.`,
		Args: cobra.NoArgs,
		Example: `  # Interactive selection of any Module
  modselect resolve --require Module

  # Replay a recorded session
  modselect resolve --picker script --script picks.yaml -o yaml`,
		RunE: runResolve,
	}
	cmd.Flags().StringArray(FlagRequire, nil, "requirement the chosen type must meet (repeatable)")
	cmd.Flags().String(FlagPicker, "", "picker to use: tui, auto or script (defaults to resolve.picker)")
	cmd.Flags().String(FlagScript, "", "YAML pick script for the script picker")
	cmd.Flags().Duration(FlagTimeout, 0, "give up after this long (defaults to resolve.pick_timeout)")
	cmd.Flags().String(FlagRecord, "", "write the answers given during this session to a pick script")
	cmd.Flags().Int(FlagParallelism, 0, "goroutines used to filter the catalog (0 uses GOMAXPROCS)")
	cmd.Flags().StringP(FlagOutput, "o", formatText, "output format: text, yaml or json")
	return cmd
}

func runResolve(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd, formatText, formatYAML, formatJSON)
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
	chooser, err := buildPicker(cmd, cfg)
	if err != nil {
		return err
	}
	recordPath, err := cmd.Flags().GetString(FlagRecord)
	if err != nil {
		return err
	}
	var recorder *picker.Recorder
	if recordPath != "" {
		recorder = picker.NewRecorder(chooser)
		chooser = recorder
	}
	parallelism, err := cmd.Flags().GetInt(FlagParallelism)
	if err != nil {
		return err
	}

	logger, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	session, err := resolver.NewSession(cat, chooser,
		resolver.WithLogger(logger),
		resolver.WithParallelism(parallelism),
	)
	if err != nil {
		return err
	}

	ctx, cancel, err := resolveContext(cmd, cfg)
	if err != nil {
		return err
	}
	defer cancel()

	result, err := session.Resolve(ctx, constraints)
	if err != nil {
		return err
	}
	if recorder != nil {
		if err := recorder.WriteFile(recordPath); err != nil {
			return err
		}
	}
	if err := encodeResult(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}
	if result.Cancelled() {
		return &cancelledError{reason: result.Reason}
	}
	return nil
}

func buildPicker(cmd *cobra.Command, cfg *config.Config) (resolver.Picker, error) {
	name, err := cmd.Flags().GetString(FlagPicker)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = cfg.Picker()
	}
	scriptPath, err := cmd.Flags().GetString(FlagScript)
	if err != nil {
		return nil, err
	}
	if scriptPath == "" {
		scriptPath = cfg.ScriptPath()
	}
	switch name {
	case config.PickerTUI:
		return tui.NewPicker(tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr())), nil
	case config.PickerAuto:
		return picker.Auto{}, nil
	case config.PickerScript:
		if scriptPath == "" {
			return nil, fmt.Errorf("the script picker needs --%s or resolve.script", FlagScript)
		}
		return picker.LoadScriptFile(scriptPath)
	default:
		return nil, fmt.Errorf("unknown picker %q (expected tui, auto or script)", name)
	}
}

// resolveContext applies --timeout or the configured pick timeout.
func resolveContext(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc, error) {
	timeout := cfg.PickTimeout()
	if cmd.Flags().Changed(FlagTimeout) {
		flagTimeout, err := cmd.Flags().GetDuration(FlagTimeout)
		if err != nil {
			return nil, nil, err
		}
		timeout = flagTimeout
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}
