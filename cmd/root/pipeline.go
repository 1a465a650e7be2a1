package root

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsidebar/insights/pkg/bookmarks"
	"github.com/bsidebar/insights/pkg/config"
	"github.com/bsidebar/insights/pkg/kvstore"
	"github.com/bsidebar/insights/pkg/settings"
	"github.com/bsidebar/insights/pkg/telemetry"
)

// pipeline is a telemetry client wired to the configured store and
// providers.
type pipeline struct {
	client *telemetry.Client
	model  *telemetry.StoreModel
	store  kvstore.Store
}

func openPipeline(ctx context.Context, cfg *config.Config, extra ...telemetry.Option) (*pipeline, error) {
	store, err := kvstore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}

	model := telemetry.NewStoreModel(store)
	if _, err := model.EnsureInstallationDate(ctx, time.Now()); err != nil {
		slog.Warn("Failed to record installation date", "error", err)
	}

	opts := []telemetry.Option{
		telemetry.WithEnabled(cfg.Enabled && telemetry.GetTelemetryEnabled()),
		telemetry.WithDevMode(cfg.DevMode),
		telemetry.WithEndpoint(cfg.Endpoint),
		telemetry.WithInterval(cfg.Interval),
		telemetry.WithRequestTimeout(cfg.RequestTimeout),
		telemetry.WithRetryDelay(cfg.RetryDelay),
		telemetry.WithMaxRetries(cfg.MaxRetries),
		telemetry.WithModel(model),
		telemetry.WithEnvironment(telemetry.SystemEnvironment{
			AppVersion: cfg.Version,
			Lang:       cfg.Language,
		}),
	}
	if cfg.Bookmarks.Path != "" {
		opts = append(opts, telemetry.WithBookmarks(bookmarks.NewFile(cfg.Bookmarks.Path)))
	}
	if cfg.Settings.Path != "" {
		opts = append(opts, telemetry.WithSettings(settings.NewFile(cfg.Settings.Path)))
	}
	opts = append(opts, extra...)

	return &pipeline{
		client: telemetry.NewClient(slog.Default(), opts...),
		model:  model,
		store:  store,
	}, nil
}

func (p *pipeline) Close() error {
	return p.store.Close()
}
