package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/api"
	"github.com/baxromumarov/upfolio/internal/config"
	"github.com/baxromumarov/upfolio/internal/core"
	"github.com/baxromumarov/upfolio/internal/httpx"
	"github.com/baxromumarov/upfolio/internal/scraper"
	"github.com/baxromumarov/upfolio/internal/store"
	"github.com/baxromumarov/upfolio/internal/urlutil"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "Path to YAML config (defaults to $"+config.EnvConfigPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.ResolveAIKey(logger)

	dbStore, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer dbStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dbStore.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	aiClient := ai.NewClient(cfg.AI.ClientConfig(), logger)

	blocked, err := urlutil.NewHostMatcher(cfg.Scraper.BlockedHosts)
	if err != nil {
		slog.Error("invalid blocked hosts", "error", err)
		os.Exit(1)
	}

	jobScraper := scraper.New(httpx.NewPageFetcher(cfg.Scraper.UserAgent, cfg.Scraper.Timeout), aiClient, blocked, logger)
	previews := core.NewLinkPreviewer(
		httpx.NewCollyFetcher(cfg.Scraper.UserAgent, cfg.Scraper.Timeout),
		blocked,
		cfg.LinkPreview.CacheSize,
		cfg.LinkPreview.TTL,
	)

	// Top up credits now and on every interval
	refill := core.NewCreditRefillService(dbStore, cfg.Credits.DailyFloor, cfg.Credits.RefillInterval, logger)
	refill.Start(ctx)

	srv := api.NewServer(api.Services{
		Store:     dbStore,
		Scraper:   jobScraper,
		Assistant: core.NewJobAssistantService(dbStore, jobScraper, aiClient, logger),
		Resumes:   core.NewResumeService(dbStore, aiClient, logger),
		Chat:      core.NewChatService(dbStore, aiClient, previews, logger),
	}, api.Options{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		StaticDir:          cfg.Server.StaticDir,
		InitialCredits:     cfg.Credits.Initial,
		TrustProxy:         cfg.Server.TrustProxy,
		Logger:             logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Server.Port, "ai_provider", cfg.AI.Provider)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
