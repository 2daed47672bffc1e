package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/layergraphgo/internal/ctxlog"
	"github.com/vk/layergraphgo/internal/layer"
)

// Loader abstracts document loading so the app stays agnostic to the
// document format.
type Loader interface {
	Load(ctx context.Context, paths ...string) ([]*layer.Group, error)
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle: load the document, then compile every channel of every
// group against the selected backend.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	groups []*layer.Group
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. A failure to
// load the document is a fatal startup error and panics; the entrypoint
// recovers it into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	groups, err := loader.Load(ctx, appConfig.DocPath)
	if err != nil {
		panic(fmt.Errorf("failed to load composition document: %w", err))
	}
	if len(groups) == 0 {
		panic(fmt.Errorf("no groups found under %s", appConfig.DocPath))
	}
	logger.Debug("Document loaded.", "groups", len(groups))

	return &App{
		outW:   outW,
		logger: logger,
		groups: groups,
	}
}

// Groups returns the loaded document model. This is primarily for testing.
func (a *App) Groups() []*layer.Group {
	return a.groups
}
