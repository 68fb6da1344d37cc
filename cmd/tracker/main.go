package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"MetalTracker/internal/auth"
	"MetalTracker/internal/collector"
	"MetalTracker/internal/config"
	"MetalTracker/internal/logger"
	"MetalTracker/internal/model"
	"MetalTracker/internal/notifier"
	"MetalTracker/internal/portfolio"
	"MetalTracker/internal/scheduler"
	"MetalTracker/internal/server"
	"MetalTracker/internal/storage"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("MetalTracker starting")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("MetalTracker stopped with error")
	}
	log.Info().Msg("MetalTracker stopped")
}

// openStore returns the configured repository and, when it can hold accounts, a user store.
func openStore(cfg *config.Config, log zerolog.Logger) (storage.Repository, auth.UserStore, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		s, err := storage.NewSQLiteStore(cfg.Storage.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		return storage.NewFileStore(cfg.Storage.Path, log), nil, nil
	default:
		s := storage.NewMemoryStore()
		return s, s, nil
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "metalprice":
		return collector.NewMetalpriceFetcher(cfg.DataSource.APIKey, cfg.DataSource.Currency, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Prices: model.PerMetal{model.Gold: 550, model.Silver: 6.8, model.Platinum: 230}}
	default:
		return collector.NewYahooFetcher(cfg.DataSource.FXSymbol, cfg.Proxy)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, users, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	mgr, err := portfolio.NewManager(ctx, repo, log)
	if err != nil {
		return err
	}
	if cfg.HasStrategy() {
		strategy, err := cfg.ApplyStrategy(mgr.Snapshot().Config)
		if err != nil {
			return err
		}
		if err := mgr.UpdateConfig(ctx, strategy); err != nil {
			return fmt.Errorf("apply strategy overrides: %w", err)
		}
		log.Info().Float64("capital", strategy.TotalCapital).Msg("strategy overrides applied")
	}

	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher, log)

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, col, mgr, n, log)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.MonthlyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily task now")
		go func() {
			if err := sched.RunDaily(ctx); err != nil {
				log.Error().Err(err).Msg("daily task failed")
			}
		}()
	}

	var authSvc *auth.Service
	if users != nil {
		authSvc = auth.NewService(users, auth.DefaultSessionTTL)
	} else if cfg.Server.RequireAuth {
		return errors.New("server.require_auth needs the sqlite or memory storage driver")
	}
	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		Log:         log,
		Manager:     mgr,
		Auth:        authSvc,
		RequireAuth: cfg.Server.RequireAuth,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().Msg("MetalTracker is running. Press Ctrl+C to stop.")
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
