package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/moffa90/go-hf2/hid"
	"github.com/moffa90/go-hf2/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	_ = hid.Exit()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "hf2: error: %v\n", err)
		os.Exit(1)
	}
}
