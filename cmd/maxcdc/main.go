package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"maxcdc/cmd/maxcdc/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
