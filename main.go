package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cli/browser"

	"github.com/heartlive/models"
	"github.com/heartlive/server"
	"github.com/heartlive/source"
)

func main() {
	cfg, err := models.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, logFile, err := server.SetupLogging(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to set up logging: ", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("heartlive exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg models.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.New(cfg, logger)
	if err != nil {
		return err
	}
	auth, err := source.NewAuthorizer(cfg)
	if err != nil {
		return err
	}

	agg := models.NewAggregator(
		models.WithHistoryLimit(cfg.HistoryLimit),
		models.WithLabelLayout(cfg.LabelLayout),
	)
	monitor := models.NewMonitor(logger, auth, src, agg, models.KeepHistoryOnStop(cfg.KeepHistoryOnStop))
	defer func() {
		if err := monitor.Close(); err != nil {
			logger.Error("failed to stop monitoring", "err", err)
		}
	}()

	// Access can be granted later through POST /api/authorize.
	granted, err := monitor.RequestAccess(ctx)
	switch {
	case errors.Is(err, source.ErrNotAvailable), errors.Is(err, source.ErrNotAuthorized):
		logger.Warn("heart rate access unavailable", "auth", cfg.Auth, "err", err)
	case err != nil:
		logger.Error("failed to start monitoring", "source", cfg.Source, "err", err)
	case !granted:
		logger.Warn("heart rate access denied", "auth", cfg.Auth)
	}

	srv := server.New(logger, monitor)
	defer srv.Close()

	if cfg.OpenBrowser {
		url := localURL(cfg.Addr)
		if err := browser.OpenURL(url); err != nil {
			logger.Warn("failed to open browser", "url", url, "err", err)
		}
	}

	logger.Info("heartlive ready", "source", cfg.Source, "auth", cfg.Auth, "addr", cfg.Addr)
	return srv.Run(ctx, cfg.Addr)
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return fmt.Sprintf("http://localhost%s", addr)
	}
	return "http://" + addr
}
