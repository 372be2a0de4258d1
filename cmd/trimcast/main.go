package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/mgpai22/trimcast/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			os.Exit(1)
		}
		os.Exit(130)
	}
}
