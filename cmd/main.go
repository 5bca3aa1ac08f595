package main

import (
	"os"
	"os/signal"
	"syscall"

	"sampahkita/internal/bootstrap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = ""

func main() {
	container := bootstrap.NewContainer(version)
	container.MustInit()

	if err := container.Start(); err != nil {
		container.Log.Errorf("Failed to start: %v", err)
		container.Shutdown()
		os.Exit(1)
	}

	waitForShutdown(container)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a fatal server error, then cleans up
func waitForShutdown(container *bootstrap.Container) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		container.Log.Infof("Received signal %v, shutting down gracefully...", sig)
	case <-container.Context.Done():
		container.Log.Info("Context cancelled, shutting down...")
	}

	container.Shutdown()
}
