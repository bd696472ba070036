package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"auction_go/internal/app"
	"auction_go/internal/event"
	"auction_go/internal/infra/feed"
	"auction_go/internal/strategy"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	periodID := flag.Uint("period", 0, "trading period to clear")
	ordersPath := flag.String("orders", "", "order file to import as a new period (cleared right away)")
	serve := flag.Bool("serve", false, "serve the clearing feed until interrupted, even if disabled in config")
	history := flag.Bool("history", false, "print every stored clearing of -period")
	watch := flag.String("watch", "", "print clearings from a running feed (ws://host:port/ws) and exit on interrupt")
	flag.Parse()

	if *watch != "" {
		runWatch(*watch)
		return
	}

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath, *serve); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Optional order import
	id := *periodID
	if *ordersPath != "" {
		seeded, err := bootstrap.SeedFromFile(ctx, *ordersPath)
		if err != nil {
			slog.Error("Order import failed", slog.Any("error", err))
			os.Exit(1)
		}
		id = seeded
	}

	// 4. Clear and report
	if *history {
		if err := printHistory(ctx, bootstrap, id); err != nil {
			slog.Error("History failed", slog.Uint64("period_id", uint64(id)), slog.Any("error", err))
			os.Exit(1)
		}
	} else if id != 0 {
		if err := clearAndPrint(ctx, bootstrap, id); err != nil {
			slog.Error("Clearing failed", slog.Uint64("period_id", uint64(id)), slog.Any("error", err))
			os.Exit(1)
		}
	}

	// 5. Feed server
	if bootstrap.Server == nil {
		return
	}
	slog.InfoContext(ctx, "Feed running. Press Ctrl+C to exit.")
	if err := bootstrap.Server.Run(ctx); err != nil {
		slog.Error("Feed server failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Shutting down gracefully...")
}

// runWatch follows a remote feed without touching local storage.
func runWatch(url string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	enc := json.NewEncoder(os.Stdout)
	sub := feed.NewSubscriber(url, nil, func(ev event.Event) {
		if err := enc.Encode(ev); err != nil {
			logger.Error("Failed to print feed event", slog.Uint64("seq", ev.Seq), slog.Any("error", err))
		}
	}, logger)
	if err := sub.Run(ctx); err != nil {
		os.Exit(1)
	}
}

func printHistory(ctx context.Context, b *app.Bootstrap, periodID uint) error {
	if periodID == 0 {
		return fmt.Errorf("-history needs -period")
	}
	recs, err := b.Service.History(ctx, periodID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLEARED AT\tPRICE\tCASE\tRANGE\tORDERS\tID")
	for _, rec := range recs {
		res := rec.Result()
		band := "-"
		if res.HasRange() {
			band = res.Range
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.CreatedAt.Format(time.RFC3339), res.Price, res.Case, band, rec.OrderCount, rec.ID)
	}
	return w.Flush()
}

func clearAndPrint(ctx context.Context, b *app.Bootstrap, periodID uint) error {
	rec, err := b.Service.ClearPeriod(ctx, periodID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return err
	}

	levels, err := b.Service.Depth(ctx, periodID)
	if err != nil {
		return err
	}
	printDepth(levels)
	return nil
}

func printDepth(levels []strategy.Level) {
	if len(levels) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PRICE\tSUPPLY\tDEMAND\tTURNOVER\tIMBALANCE\t")
	for _, l := range levels {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", l.Price, l.Supply, l.Demand, l.Turnover, l.Imbalance)
	}
	w.Flush()
}
