package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/chatterbox/pkg/api"
	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/config"
	"github.com/platinummonkey/chatterbox/pkg/middleware"
	"github.com/platinummonkey/chatterbox/pkg/observability"
	"github.com/platinummonkey/chatterbox/pkg/storage"
	"github.com/platinummonkey/chatterbox/pkg/storage/postgres"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.Level(), os.Stdout)
	if cfg.Source != "" {
		logger.WithField("path", cfg.Source).Info("Configuration loaded")
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	privatePEM, publicPEM, err := cfg.Auth.KeyPEMs()
	if err != nil {
		return err
	}
	keys, err := auth.LoadKeyPair(privatePEM, publicPEM)
	if err != nil {
		return fmt.Errorf("failed to load signing keys: %w", err)
	}

	db, err := postgres.Connect(ctx, postgres.ConnectionConfig{
		URL:         cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		Timeout:     cfg.Database.Timeout,
		MaxLifetime: cfg.Database.MaxLifetime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
	})
	if err != nil {
		return err
	}
	logger.Info("Database connection established")

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry, db)

	files, err := storage.NewFileSystemStorage(cfg.Server.BaseDir,
		storage.WithMetrics(metrics.FilesStoredTotal, metrics.FileBytesStored))
	if err != nil {
		db.Close()
		return err
	}
	logger.WithField("base_dir", files.RootDir()).Info("File storage initialized")

	store := postgres.NewPostgresStorage(db, auth.NewPasswordHasher(auth.DefaultArgon2Params()), files)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return err
	}

	var membership middleware.MembershipChecker = store
	if cfg.Cache.MembershipTTL > 0 {
		membership = postgres.NewMembershipCache(store, cfg.Cache.MembershipSize, cfg.Cache.MembershipTTL, metrics.MembershipCacheTotal)
	}

	health := observability.NewHealthChecker(version,
		observability.DatabaseProbe(db),
		observability.DirectoryProbe("file_store", files.RootDir()),
	)
	logger.WithField("probes", health.Names()).Debug("Readiness probes registered")

	deps := api.Dependencies{
		Store:          store,
		Files:          files,
		Keys:           keys,
		Logger:         logger,
		Membership:     membership,
		Health:         health,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}
	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics
		deps.Registry = registry
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewServer(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc("database", func(context.Context) error {
		return db.Close()
	})

	serveErr := make(chan error, 1)
	go func() {
		defer observability.RecoverPanic(logger, "http server")
		logger.WithField("addr", httpServer.Addr).WithField("version", version).Info("Starting chat server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			db.Close()
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return shutdown.Shutdown()
}
