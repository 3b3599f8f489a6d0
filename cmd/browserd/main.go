// File: cmd/browserd/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/kvirtue/gemini-computer-use/cmd"
	"github.com/kvirtue/gemini-computer-use/internal/observability"
)

func main() {
	// Interrupt signals drive a graceful shutdown: in-flight runs see a
	// canceled context and release their browser sessions.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
