// cmd/modselect/main.go
//
// Entry point for the modselect CLI. Every subcommand works against the
// project in the current directory (or --project) and its .modselect folder.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

// exitCancelled is returned by `modselect resolve` when no type was chosen.
const exitCancelled = 2

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var cancelled *cancelledError
	if errors.As(err, &cancelled) {
		os.Exit(exitCancelled)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
