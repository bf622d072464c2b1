// Package main is the entry point for the tasker CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasker/internal/backend/restapi"
	"tasker/internal/cli"
	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/logger"
	"tasker/internal/session"
	"tasker/internal/state"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// One store, one client, one App per invocation.
	factory := func(ctx context.Context, cfg *config.Config) (*state.App, func(), error) {
		store, err := session.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		client := restapi.New(cfg, store, restapi.NewMetrics())
		app := state.New(store, client, logger.Get())
		return app, func() { logRequestCounts(client.Metrics()) }, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// logRequestCounts logs how many requests each operation issued (debug only).
func logRequestCounts(m *restapi.Metrics) {
	counts, err := m.Counts()
	if err != nil {
		logger.Debug("gather metrics", "err", err)
		return
	}
	for _, c := range counts {
		logger.Debug("requests", "op", c.Op, "outcome", c.Outcome, "count", c.N)
	}
}
