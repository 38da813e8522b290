// Command mowsim runs autonomous mowing robot simulations from the
// command line: headless batch runs with CSV export, and a live server
// mode that streams robot poses over websockets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
