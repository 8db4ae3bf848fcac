package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finflow/internal/auth"
	"finflow/internal/config"
	"finflow/internal/database"
	"finflow/internal/logging"
	"finflow/internal/report"
	"finflow/internal/router"
	"finflow/internal/store"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.yaml when present)")
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Security.EncryptionKey == "" {
		logger.Warn("security.encryption_key is empty, audit logs are stored in plain text and backups are disabled")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

func run(cfg config.Config, logger *logging.Logger) error {
	dbLog := logger.WithComponent(logging.ComponentDatabase)

	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			dbLog.Warn("close database", "error", err)
		}
	}()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if err := report.Install(context.Background(), db); err != nil {
		return err
	}
	dbLog.Info("database ready", "driver", cfg.Database.Driver)

	st := store.New(db, store.Options{
		MaxPageSize: cfg.App.MaxPageSize,
		BcryptCost:  cfg.Security.BcryptCost,
	})
	authSvc := auth.NewService(st.Users, st.Sessions, auth.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.ExpireMinutes) * time.Minute,
	}, logger)

	engine := router.SetupRouter(router.Deps{
		Config:  cfg,
		Store:   st,
		Auth:    authSvc,
		Reports: report.NewSQLReporter(db),
		Log:     logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "name", cfg.App.Name, "version", cfg.App.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
