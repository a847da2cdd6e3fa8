package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/rosarium/internal/storage"
)

// ImportReport summarises an import.
type ImportReport struct {
	Specimens int
	Events    int
	Warnings  []string
}

// Export writes the stored garden to w as an indented snapshot document.
// Logs go to stderr so w may be stdout.
func Export(ctx context.Context, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	svc, _, closeStore, err := app.openService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	data, err := storage.EncodeIndent(svc.Export(ctx))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the stored garden with the JSON or YAML document in data
// and saves it. Unreadable records are skipped and reported as warnings; a
// document with nothing readable is refused.
func Import(ctx context.Context, data []byte, opts ...Option) (ImportReport, error) {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return ImportReport{}, err
	}

	snap, warnings, err := storage.DecodeImport(data)
	if err != nil {
		return ImportReport{}, fmt.Errorf("import: %w", err)
	}
	for _, w := range warnings {
		app.logger.Warn("import: record skipped", slog.String("problem", w))
	}

	svc, _, closeStore, err := app.openService(ctx)
	if err != nil {
		return ImportReport{}, err
	}
	defer func() { _ = closeStore() }()

	svc.Import(ctx, snap)
	if err := svc.Flush(ctx); err != nil {
		return ImportReport{}, fmt.Errorf("import: save: %w", err)
	}
	return ImportReport{
		Specimens: len(snap.Specimens),
		Events:    len(snap.Events),
		Warnings:  warnings,
	}, nil
}
