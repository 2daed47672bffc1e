package app

import (
	"context"
	"fmt"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/compose"
	"github.com/vk/layergraphgo/internal/ctxlog"
	"github.com/vk/layergraphgo/internal/inmemorygraph"
	"github.com/vk/layergraphgo/internal/remote"
)

// Run compiles every channel of every loaded group against the
// configured backend and logs a per-channel summary. Degraded layers are
// reported and do not fail the run; cycle and compile errors do.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	graph, cleanup, err := a.openBackend(ctx, appConfig)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, group := range a.groups {
		groupLogger := a.logger.With("group", group.Name)
		for _, channel := range group.Channels {
			cd := compose.NewConductor(channel, graph)
			if err := cd.Flush(ctx); err != nil {
				if cd.Live() == nil {
					return fmt.Errorf("group %q channel %q: %w", group.Name, channel.Name, err)
				}
				// The channel compiled; some layers degraded.
				groupLogger.Warn("Channel compiled with degraded layers.",
					"channel", channel.Name, "error", err)
			}
			live := cd.Live()
			groupLogger.Info("Channel compiled.",
				"channel", channel.Name,
				"nodes", live.NodeCount(),
				"edges", live.EdgeCount(),
				"fingerprint", live.Fingerprint())
		}
	}
	return nil
}

// openBackend selects and connects the configured graph backend.
func (a *App) openBackend(ctx context.Context, appConfig *Config) (backend.Graph, func(), error) {
	switch appConfig.Backend {
	case "remote":
		g, err := remote.Dial(ctx, appConfig.RemoteURL, appConfig.RemoteNamespace, appConfig.InsecureSkipVerify)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close() }, nil
	default:
		return inmemorygraph.New(), func() {}, nil
	}
}
