package internal

import (
	"context"
	"log/slog"
	"os"

	"github.com/starford/rosarium/internal/mcpserver"
)

// RunMCP serves the garden over the MCP stdio transport. Logs go to stderr
// because stdout carries the protocol. Changes are flushed before returning.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	logger := app.logger

	svc, _, closeStore, err := app.openService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	saverCtx, stopSaver := context.WithCancel(ctx)
	saverDone := make(chan struct{})
	go func() {
		defer close(saverDone)
		_ = svc.RunSaver(saverCtx)
	}()

	logger.Info("MCP server starting on stdio", slog.String("storage_driver", app.config.Storage.Driver))
	serveErr := mcpserver.New(svc).ServeStdio()

	stopSaver()
	<-saverDone
	return serveErr
}
