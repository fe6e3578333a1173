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
	"time"

	"pedalboard/internal/config"
	"pedalboard/internal/logger"
	"pedalboard/internal/seed"
	"pedalboard/internal/server"
	"pedalboard/internal/storage/memory"
	"pedalboard/internal/storage/sqlite"
	"pedalboard/internal/util"
)

const version = "1.0.0"

type store interface {
	server.Store
	Close() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	defaultPath, fromEnv := util.Env("PEDALBOARD_CONFIG", "config.yaml")
	configFlag := flag.String("config", defaultPath, "Path to YAML configuration file")
	flag.Parse()

	explicit := fromEnv
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := config.Load(*configFlag, explicit)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("pedalboard server", slog.String("version", version), slog.String("storage", cfg.Storage.Driver))

	st, err := openStore(cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if cfg.Seed.Enabled {
		if _, err := seed.Load(context.Background(), st, log); err != nil {
			return fmt.Errorf("load sample pedalboards: %w", err)
		}
	}

	srv := server.New(st, log, cfg.Server.StaticDir)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Engine(),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	return serve(httpServer, quit, cfg.Server.ShutdownTimeout, log)
}

// serve runs httpServer until a signal arrives on quit or the listener fails.
func serve(httpServer *http.Server, quit <-chan os.Signal, timeout time.Duration, log *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func openStore(cfg config.StorageConfig, log *slog.Logger) (store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLiteDSN, log)
	default:
		return memory.New(log), nil
	}
}
