package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shopqa/internal/di"
	"shopqa/internal/infrastructure/env"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		env:   env.NewEnvService(),
		out:   os.Stdout,
		build: di.NewContainer,
	}
	err := newRootCmd(a).ExecuteContext(ctx)
	// PersistentPostRun is skipped when a command fails.
	a.close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
