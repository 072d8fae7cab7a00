package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"bilancio/internal/cli"
	apphttp "bilancio/internal/http"
	"bilancio/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg)
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close SQLite repository", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(cfg.Addr(), repo, apphttp.WithLogger(logger.WithComponent(log.ComponentHTTP)))

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// Graceful shutdown handling
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
	}()

	logger.Info("Starting bilancio server",
		"addr", cfg.Addr(),
		"db_path", cfg.SQLiteDBPath,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "addr", cfg.Addr())
		cancel()
		<-stopped
		_ = repo.Close()
		os.Exit(1)
	}

	<-stopped
	logger.Info("Server stopped gracefully")
}
