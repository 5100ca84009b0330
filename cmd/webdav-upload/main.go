package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lokeren12/action-upload-webdav/internal/cmd"
)

// Entry point for the application
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Errors are already reported by the command
	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
