package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archive_backend/internals/configs"
	database "archive_backend/internals/databases"
	helperOSS "archive_backend/internals/helpers/oss"
	"archive_backend/internals/metrics"
	routes "archive_backend/internals/route"
)

func ServeCommand(cfg *configs.Config) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfg, autoMigrate)
		},
	}
	cmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg configs.Config, autoMigrate bool) error {
	log, err := configs.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	database.TunePool(db, log)
	database.WarmUp(db, log)

	if autoMigrate || cfg.DBDriver == "sqlite" {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	store, err := newBlobStore(cfg, log)
	if err != nil {
		return err
	}

	app := routes.NewApp(routes.Deps{
		Cfg:     cfg,
		DB:      db,
		Store:   store,
		Metrics: metrics.New(),
		Log:     log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		errCh <- app.Listen("0.0.0.0:" + cfg.Port)
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-sigCtx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// newBlobStore uses OSS when configured. Outside production an in-memory
// store stands in so the API can be exercised locally.
func newBlobStore(cfg configs.Config, log *zap.Logger) (helperOSS.BlobStore, error) {
	svc, err := helperOSS.NewOSSService(cfg.OSS, log)
	if err == nil {
		return svc, nil
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	log.Warn("object storage not configured, using in-memory store", zap.Error(err))
	return helperOSS.NewMockBlobStore(), nil
}
