package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Zhengnan817/consumables-dashboard/internal/analytics"
	"github.com/Zhengnan817/consumables-dashboard/internal/backend"
	"github.com/Zhengnan817/consumables-dashboard/internal/cache"
	"github.com/Zhengnan817/consumables-dashboard/internal/cli"
	"github.com/Zhengnan817/consumables-dashboard/internal/loader"
	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/notify"
	"github.com/Zhengnan817/consumables-dashboard/internal/report"
	"github.com/Zhengnan817/consumables-dashboard/internal/worker"
)

func main() {
	view := flag.String("view", report.ViewOverview, "view to build: Overview, BT, WT, IM, QC, MT or SCM")
	year := flag.Int("year", 0, "year for the overview's monthly series (default latest)")
	top := flag.Int("top", analytics.DefaultTopN, "length of item rankings")
	envFile := flag.String("env", ".env", "optional .env file")
	watch := flag.Bool("watch", false, "reload every REFRESH_INTERVAL and print each report")
	flag.Parse()

	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile(*envFile)
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	if !report.ValidView(*view) {
		logger.Error("Unknown view", "view", *view, "views", report.Views())
		os.Exit(2)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if *watch && cfg.RefreshInterval == 0 {
		logger.Error("Watch mode needs REFRESH_INTERVAL")
		os.Exit(2)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	set, err := backend.NewFactory(logger.Logger, client).Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to configure sources", "error", err)
		os.Exit(1)
	}

	notifier := notify.New(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if c, ok := notifier.(io.Closer); ok {
		defer c.Close()
	}

	batches := cache.NewLRUCache[normalize.Batch](cfg.CacheSize, cfg.CacheTTL)
	ld := loader.New(set.History, set.Incremental,
		loader.WithCache(batches),
		loader.WithConcurrency(cfg.FetchConcurrency),
		loader.WithNormalizer(cli.NewNormalizer(cfg)),
		loader.WithNotifier(notifier),
		loader.WithLogger(logger),
	)

	var interval = cfg.RefreshInterval
	if !*watch {
		interval = 0
	}
	w := worker.NewRefreshWorker(ld, report.NewService(report.WithLogger(logger)), interval, logger)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	var buildErr error
	w.OnRefresh = func(ctx context.Context, s *report.Session) {
		rep, err := s.Build(ctx, *view, report.Options{Year: *year, TopN: *top})
		if err != nil {
			buildErr = err
			logger.ErrorContext(ctx, "Failed to build report", "view", *view, "error", err)
			return
		}
		if err := enc.Encode(rep); err != nil {
			buildErr = fmt.Errorf("write report: %w", err)
		}
	}

	if err := w.Run(ctx); err != nil {
		logger.Error("Load failed", "error", err)
		os.Exit(1)
	}
	if buildErr != nil && !*watch {
		os.Exit(1)
	}
}
