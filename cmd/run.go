package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/skydrive/skydrive/api"
	"github.com/skydrive/skydrive/internal/blob"
	"github.com/skydrive/skydrive/internal/cache"
	"github.com/skydrive/skydrive/internal/config"
	"github.com/skydrive/skydrive/internal/database"
	"github.com/skydrive/skydrive/internal/logging"
	"github.com/skydrive/skydrive/pkg/controller"
	"github.com/skydrive/skydrive/pkg/services"
)

func NewRun() *cobra.Command {
	var cfg config.Config
	loader := config.NewLoader()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start SkyDrive server",
		Run: func(cmd *cobra.Command, args []string) {
			runApplication(cmd.Context(), &cfg)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.Initialize(cmd); err != nil {
				return err
			}
			if err := loader.Load(&cfg); err != nil {
				return err
			}
			return cfg.Validate()
		},
	}
	config.AddServerFlags(cmd.Flags(), &cfg)
	return cmd
}

func runApplication(ctx context.Context, conf *config.Config) {
	lvl, err := zapcore.ParseLevel(conf.Log.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	logging.SetConfig(&logging.Config{
		Level:    lvl,
		FilePath: conf.Log.File,
	})

	lg := logging.DefaultLogger().Sugar()

	defer lg.Sync()

	cacher := cache.NewCache(ctx, &conf.Cache)

	db, err := database.NewDatabase(&conf.DB, lg)
	if err != nil {
		lg.Fatalw("failed to create database", "err", err)
	}

	if err := database.MigrateDB(db); err != nil {
		lg.Fatalw("failed to migrate database", "err", err)
	}

	store, err := blob.NewS3Store(ctx, &conf.Storage)
	if err != nil {
		lg.Fatalw("failed to create blob store", "err", err)
	}

	srv := setupServer(conf, db, store, cacher)

	go func() {
		lg.Infof("Server started at http://localhost:%d", conf.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Errorw("failed to start server", "err", err)
		}
	}()

	<-ctx.Done()

	lg.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.Server.GracefulShutdown)

	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Errorw("server shutdown failed", "err", err)
	}

	lg.Info("Server stopped")
}

func setupServer(cfg *config.Config, db *gorm.DB, store blob.Store, cacher cache.Cacher) *http.Server {
	lg := logging.DefaultLogger()

	ctl := controller.NewController(
		services.NewFileService(db, store, cacher, lg.Sugar()),
		services.NewFolderService(db, lg.Sugar()),
		services.NewShareService(db, store, cacher, cfg.Server.BaseURL, lg.Sugar()),
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.InitRouter(cfg, ctl, lg),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
