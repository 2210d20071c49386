// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"research-assistant/internal/common/config"
	"research-assistant/internal/common/gemini"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/common/observability"
	"research-assistant/internal/functions/research"
	"research-assistant/internal/server"
	"research-assistant/pkg/registry"
)

func main() {
	zapLog := logger.New("info", "json", "")
	zapLog.Info("Starting research assistant...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level, format, and sink.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	reg, err := registry.LoadRegistry(cfg.Functions.RegistryPath)
	if err != nil {
		zapLog.Fatal("function registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("function registry invalid", zap.Error(err))
	}

	entry, ok := reg.FindByID(research.FunctionID)
	if !ok {
		zapLog.Fatal("research function missing from registry",
			zap.String("registryPath", cfg.Functions.RegistryPath))
	}

	geminiClient := gemini.NewClient(&gemini.Config{
		BaseURL: cfg.APIs.Gemini.BaseURL,
		APIKey:  cfg.APIs.Gemini.APIKey,
		Model:   cfg.APIs.Gemini.Model,
		Timeout: cfg.APIs.Gemini.RequestTimeout(),
	}, log)

	researchHandler := research.NewHandler(
		&research.Config{
			APIKey:       cfg.APIs.Gemini.APIKey,
			OutputSchema: entry.OutputSchema,
		},
		geminiClient,
		log,
	)

	srv := server.New(cfg.Server, log, obs)
	srv.Handle(entry.ID, entry.HTTPMethod, entry.Path, researchHandler)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	zapLog.Info("All functions registered successfully",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("functions", len(reg.Functions)),
	)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Research assistant stopped gracefully")
}
