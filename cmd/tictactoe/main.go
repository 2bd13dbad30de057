package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/config"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/logging"
	"github.com/jaminalder/tictactoe-minimax/internal/web"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "config.yml", "path to the yaml config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := logging.New(os.Stdout, conf.LogLevel)

	if err := run(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

func run(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "main")

	mode, err := domain.ParseMode(conf.DefaultMode)
	if err != nil {
		return fmt.Errorf("default-mode: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := app.NewService(logger)
	srv := &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: web.NewServer(svc, logger, web.WithHeartbeat(conf.HeartbeatInterval), web.WithDefaultMode(mode)),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", conf.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err = <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
