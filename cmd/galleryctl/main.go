package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/harry7799/heng-studio/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, os.Args[1:], &cli.Deps{}); err != nil {
		os.Exit(1)
	}
}
