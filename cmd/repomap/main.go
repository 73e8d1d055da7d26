package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/toyz/repomap/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
