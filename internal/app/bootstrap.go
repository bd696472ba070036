package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"auction_go/internal/domain"
	"auction_go/internal/engine"
	"auction_go/internal/infra"
	"auction_go/internal/infra/feed"
	"auction_go/internal/infra/orderfile"
	"auction_go/internal/infra/storage"
	"auction_go/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Logger  *slog.Logger
	Metrics *infra.Metrics
	Storage *storage.Storage
	Engine  *engine.Engine
	Hub     *feed.Hub
	Server  *feed.Server // nil when the feed is disabled
	Service *service.ClearingService
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads the configuration and wires storage, engine, feed and service.
// A missing config file falls back to the defaults. serve turns the feed on
// regardless of the config; the hub is only built together with its server.
func (b *Bootstrap) Initialize(configPath string, serve bool) error {
	// 1. Load Config
	cfg, err := infra.LoadConfigOrDefault(configPath)
	if err != nil {
		return err
	}
	if serve {
		cfg.Feed.Enabled = true
	}
	b.Config = cfg

	// 2. Setup Logger
	b.Logger = infra.NewLogger(cfg)
	slog.SetDefault(b.Logger)
	slog.Info("Bootstrapping auction engine", slog.String("config", configPath))

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("Database initialized", slog.String("path", cfg.Storage.Path))

	// 4. Engine, feed and service
	b.Metrics = infra.GlobalMetrics
	b.Engine = engine.NewEngine(cfg.Clearing.BandPercent)

	var publisher domain.ClearingPublisher
	if cfg.Feed.Enabled {
		b.Hub = feed.NewHub(b.Logger, b.Metrics, cfg.Feed.SendBuffer)
		b.Server = feed.NewServer(cfg.Feed.ListenAddr, b.Hub, b.Metrics, b.Logger)
		publisher = b.Hub
	}

	b.Service = service.NewClearingService(store, b.Engine, publisher, b.Metrics, b.Logger, service.Options{
		OnlyFilled: cfg.Clearing.OnlyFilled,
		DumpDir:    cfg.Clearing.DumpDir,
	})
	slog.Info("Clearing service ready",
		slog.String("band_percent", b.Engine.BandPercent().String()),
		slog.Bool("only_filled", cfg.Clearing.OnlyFilled),
		slog.Bool("feed", cfg.Feed.Enabled))

	return nil
}

// SeedFromFile imports an order file as a new trading period and returns its id.
func (b *Bootstrap) SeedFromFile(ctx context.Context, path string) (uint, error) {
	f, err := orderfile.Load(path)
	if err != nil {
		return 0, fmt.Errorf("load order file %s: %w", path, err)
	}
	filled, unfilled, err := f.Split()
	if err != nil {
		return 0, fmt.Errorf("order file %s: %w", path, err)
	}

	period := &domain.TradingPeriod{Name: f.Period, ClosedAt: time.Now()}
	if err := b.Storage.CreatePeriod(ctx, period); err != nil {
		return 0, err
	}
	if err := b.Storage.AddOrders(ctx, period.ID, filled, true); err != nil {
		return 0, err
	}
	if err := b.Storage.AddOrders(ctx, period.ID, unfilled, false); err != nil {
		return 0, err
	}

	slog.Info("Order file imported",
		slog.String("period", f.Period),
		slog.Uint64("period_id", uint64(period.ID)),
		slog.Int("filled", len(filled)),
		slog.Int("unfilled", len(unfilled)))
	return period.ID, nil
}

// Close releases storage.
func (b *Bootstrap) Close() {
	if b.Storage != nil {
		if err := b.Storage.Close(); err != nil {
			slog.Error("Failed to close storage", slog.Any("error", err))
		}
	}
}
