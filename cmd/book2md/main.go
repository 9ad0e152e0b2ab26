package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spherical/book2md/internal/domain"
	"github.com/spherical/book2md/internal/ui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

// reportError prints known failures plainly and everything else as an
// unexpected error.
func reportError(err error) {
	var de *domain.DomainError
	switch {
	case errors.Is(err, context.Canceled):
		ui.Error("Interrupted")
	case errors.As(err, &de) && de.Type != domain.ErrorTypeIO:
		if de.Err != nil {
			ui.Error("Error: %s: %v", de.Message, de.Err)
		} else {
			ui.Error("Error: %s", de.Message)
		}
	default:
		ui.Error("Unexpected error: %v", err)
	}
}
