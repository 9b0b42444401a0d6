// Package main provides the entry point for the mediatray bridge.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/listenupapp/mediatray/internal/di"
	"github.com/listenupapp/mediatray/internal/logger"
)

func main() {
	injector := di.NewContainer(os.Args[1:])

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap bridge: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down bridge gracefully...")

	// The container shuts services down in reverse dependency order:
	// the server stops taking hooks before plugins stop and the store closes.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Bridge stopped")
}
