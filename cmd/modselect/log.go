package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/modselect/internal/logging"
)

const (
	FlagLines   = "lines"
	FlagSession = "session"
)

func newLogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the most recent resolution log lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			n, err := cmd.Flags().GetInt(FlagLines)
			if err != nil {
				return err
			}
			session, err := cmd.Flags().GetString(FlagSession)
			if err != nil {
				return err
			}
			match := ""
			if session != "" {
				match = "resolve " + session
			}
			lines, total, err := logging.Tail(logging.Path(dir), n, match)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if total > len(lines) {
				fmt.Fprintf(cmd.ErrOrStderr(), "(%d earlier lines not shown)\n", total-len(lines))
			}
			return nil
		},
	}
	cmd.Flags().IntP(FlagLines, "n", 20, "number of lines to show")
	cmd.Flags().String(FlagSession, "", "only show lines of the session with this short id")
	return cmd
}
