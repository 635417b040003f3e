package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/skydrive/skydrive/internal/config"
	"github.com/skydrive/skydrive/internal/database"
	"github.com/skydrive/skydrive/internal/logging"
)

func NewMigrate() *cobra.Command {
	var cfg config.Config
	loader := config.NewLoader()
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zapcore.ParseLevel(cfg.Log.Level)
			if err != nil {
				lvl = zapcore.InfoLevel
			}
			logging.SetConfig(&logging.Config{
				Level:    lvl,
				FilePath: cfg.Log.File,
			})
			lg := logging.DefaultLogger().Sugar()
			defer lg.Sync()

			db, err := database.NewDatabase(&cfg.DB, lg)
			if err != nil {
				return err
			}
			if err := database.MigrateDB(db); err != nil {
				return err
			}
			lg.Info("migrations applied")
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.Initialize(cmd); err != nil {
				return err
			}
			return loader.Load(&cfg)
		},
	}
	config.AddCommonFlags(cmd.Flags(), &cfg)
	return cmd
}
