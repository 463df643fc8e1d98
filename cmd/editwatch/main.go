package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"editwatch/internal/config"
	"editwatch/internal/event"
	"editwatch/internal/logging"
	"editwatch/internal/metrics"
	"editwatch/internal/observer"
	"editwatch/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	directory := flag.String("dir", "", "directory to watch (overrides config)")
	listenAddr := flag.String("addr", "", "HTTP listen address (overrides config)")
	printMode := flag.Bool("print", false, "print observations as JSON lines on stdout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewLogger(nil, logging.LevelError).Error("load config failed", map[string]string{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	if *directory != "" {
		cfg.Directory = *directory
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		level = logging.LevelInfo
	}
	logBuffer := logging.NewBuffer(logging.DefaultBufferSize)
	logger := logging.NewLoggerWithOutput(logBuffer, level, os.Stderr)
	registry := metrics.Default

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus[event.Observation](ctx, event.BusOptions{
		Name:     "observations",
		Registry: registry,
	})
	defer bus.Close()

	watch, err := observer.New(observer.Options{
		Config: observer.Config{
			Directory:       cfg.Directory,
			Recursive:       cfg.IsRecursive(),
			IncludePatterns: cfg.IncludePatterns,
			IgnorePatterns:  cfg.IgnorePatterns,
			DebounceWindow:  cfg.DebounceWindow(),
			RenameWindow:    cfg.RenameWindow(),
		},
		Logger:   logger,
		Registry: registry,
		Bus:      bus,
	})
	if err != nil {
		logger.Error("observer setup failed", map[string]string{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	if err := watch.Start(); err != nil {
		logger.Error("observer start failed", map[string]string{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		if err := watch.Stop(); err != nil {
			logger.Warn("observer stop failed", map[string]string{
				"error": err.Error(),
			})
		}
	}()

	if *printMode {
		startPrinter(ctx, bus, logger)
	}

	api := &stream.Server{
		Logger:         logger,
		Registry:       registry,
		Bus:            bus,
		AuthToken:      cfg.AuthToken,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	logger.Info("editwatch listening", map[string]string{
		"addr":      cfg.ListenAddr,
		"directory": cfg.Directory,
		"recursive": strconv.FormatBool(cfg.IsRecursive()),
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", map[string]string{
				"error": err.Error(),
			})
		}
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", map[string]string{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}
}
