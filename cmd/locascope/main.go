// File: cmd/locascope/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkaresz/locascope/cmd"
	"github.com/mkaresz/locascope/internal/observability"
)

// Allows mocking os.Exit in tests.
var osExit = os.Exit

func main() {
	// Listen for interrupt signals (SIGINT, SIGTERM) for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)

	// Flush logs before deciding the exit code.
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Graceful shutdown initiated by the user.
			osExit(0)
			return
		}
		osExit(1)
	}
}
