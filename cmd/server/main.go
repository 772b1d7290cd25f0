package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	deepthought "github.com/ncerny/deepthought"
	"github.com/ncerny/deepthought/internal/handlers"
	"github.com/ncerny/deepthought/internal/logging"
	"github.com/ncerny/deepthought/internal/metrics"
	"github.com/ncerny/deepthought/internal/relay"
	"github.com/ncerny/deepthought/internal/services"
	"github.com/subosito/gotenv"
)

func main() {
	cfgFilePath := flag.String("config", "", "path to the config file (default <user config dir>/deepthought/config.yaml)")
	flag.Parse()

	required := *cfgFilePath != ""
	if !required {
		if cfgDir, err := os.UserConfigDir(); err == nil {
			*cfgFilePath = filepath.Join(cfgDir, "deepthought", "config.yaml")
		}
	}

	// A .env file is optional; variables already set in the environment win.
	_ = gotenv.Load()

	cfg, err := loadConfig(*cfgFilePath, required, os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(fmt.Errorf("error creating logger: %w", err))
	}

	m := metrics.New()
	upstream := services.NewCompletions(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.Upstream.Model,
		services.LLMParameters{
			MaxTokens:   cfg.Upstream.MaxTokens,
			Temperature: cfg.Upstream.Temperature,
		}, logger)
	r := relay.New(upstream, strings.TrimSpace(deepthought.SystemPrompt), m, logger)
	h := handlers.NewMain(r, handlers.NewOriginPolicy(cfg.AllowedOrigin, cfg.AllowLocalhost),
		cfg.MaxBodyBytes, m, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	adminSrv := &http.Server{
		Addr:              ":" + cfg.AdminPort,
		Handler:           handlers.NewAdmin(m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Channel to listen for errors coming from either listener
	serverErrors := make(chan error, 2)

	go func() {
		logger.Info("Server starting", slog.String("addr", srv.Addr),
			slog.String("model", cfg.Upstream.Model), slog.String("allowedOrigin", cfg.AllowedOrigin))
		serverErrors <- fmt.Errorf("public server: %w", srv.ListenAndServe())
	}()
	go func() {
		logger.Info("Admin server starting", slog.String("addr", adminSrv.Addr))
		serverErrors <- fmt.Errorf("admin server: %w", adminSrv.ListenAndServe())
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		logger.Error("Server error", slog.String(logging.ErrKey, err.Error()))
		exitCode = 1

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, s := range []*http.Server{srv, adminSrv} {
		if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Graceful shutdown failed", slog.String("addr", s.Addr),
				slog.String(logging.ErrKey, err.Error()))
			if err := s.Close(); err != nil {
				logger.Error("Forcing server close", slog.String(logging.ErrKey, err.Error()))
			}
		}
	}

	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
