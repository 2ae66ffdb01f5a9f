package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roadmap/internal/app"
	"roadmap/internal/config"
	"roadmap/internal/logger"
)

const shutdownTimeout = 30 * time.Second

// FUNCTIONAL DISCOVERY: Main entry point with comprehensive error handling and signal management
// Graceful shutdown on SIGINT/SIGTERM ensures proper resource cleanup
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, os.Getenv("ROADMAP_CONFIG_FILE"))
}

// serve runs the server until ctx is cancelled or the server fails.
// ARCHITECTURAL DISCOVERY: Separate from main so tests can drive a full
// start/stop cycle with their own context
func serve(ctx context.Context, configPath string) error {
	// STEP 1: Load configuration with precedence (file > env > defaults)
	cfg, err := config.LoadConfigWithPrecedence(configPath)
	if err != nil {
		return err
	}

	// STEP 2: Logger
	log, err := logger.New(*cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	// STEP 3: Create application with configuration
	application, err := app.NewApplication(cfg, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if err := application.Start(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = application.Stop(shutdownCtx)
		return fmt.Errorf("failed to start application: %w", err)
	}

	// STEP 4: Wait for shutdown signal or server failure
	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-application.Errors():
		if ok {
			runErr = fmt.Errorf("application error: %w", err)
		}
	}

	// FUNCTIONAL DISCOVERY: Timeout context prevents hanging shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown error: %w", err)
	}
	return runErr
}
