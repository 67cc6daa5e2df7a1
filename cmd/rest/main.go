package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poultry-diagnose-be/internal/bootstrap"
	"poultry-diagnose-be/internal/config"
	"poultry-diagnose-be/internal/server"
	"poultry-diagnose-be/internal/tracer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, cfg)
	sysLogger := container.Logger

	// 3. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint, sysLogger)

	// 4. Start Background Services
	if err := container.RefreshService.Consume(ctx); err != nil {
		sysLogger.Error("MAIN", "Failed to start knowledge refresh consumer", map[string]interface{}{"error": err.Error()})
	}
	container.RefreshService.StartTicker(ctx, cfg.Diagnosis.RefreshInterval)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	case <-ctx.Done():
		sysLogger.Info("MAIN", "Shutdown signal received", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Warn("MAIN", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		sysLogger.Warn("MAIN", "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	container.Close(shutdownCtx)
}
