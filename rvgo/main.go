package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum-optimism/amoemu/rvgo/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewApp().RunContext(ctx, os.Args); err != nil {
		code := 1
		if errors.Is(err, context.Canceled) {
			code = 130
		}
		_, _ = fmt.Fprintf(os.Stderr, "amoemu: %v\n", err)
		stop()
		os.Exit(code)
	}
}
