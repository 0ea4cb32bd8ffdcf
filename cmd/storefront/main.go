package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/http/router"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront catalog and admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())
	return root
}

// setup loads config and installs the process logger.
func setup() (config.Config, func()) {
	cfg := config.Load()
	closeLog, err := applog.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		// Keep stdout logging when the file cannot be opened.
		applog.L().Warn("log.file.open.fail", zap.String("file", cfg.LogFile), zap.Error(err))
	}
	return cfg, closeLog
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply the schema and serve HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog := setup()
			defer closeLog()

			db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			app, _, err := router.New(cfg, db)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				applog.L().Info("server.shutdown")
				_ = app.ShutdownWithTimeout(10 * time.Second)
			}()

			applog.L().Info("server.listen", zap.String("port", cfg.Port))
			return app.Listen(":" + cfg.Port)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and seed baseline rows, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog := setup()
			defer closeLog()

			db, err := repos.Connect(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := repos.Migrate(ctx, db); err != nil {
				return err
			}
			applog.L().Info("migrate.done", zap.String("driver", cfg.DBDriver))
			return nil
		},
	}
}
