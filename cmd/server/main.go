package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatroomai/internal/app"
	"github.com/vovakirdan/chatroomai/internal/audit"
	"github.com/vovakirdan/chatroomai/internal/config"
	applog "github.com/vovakirdan/chatroomai/internal/log"
)

type rootFlags struct {
	configPath  string
	logLevel    string
	port        int
	storeDriver string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "chatroomai",
		Short:        "Multi-room chat server with an AI participant",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := applog.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, &cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize application")
				return err
			}

			logger.Info().Str("addr", cfg.Addr()).Str("config", path).Str("store", cfg.Store.Driver).Msg("starting chatroomai server")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config file (default ./config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().IntVar(&flags.port, "port", 0, "HTTP listen port (overrides config and PORT)")
	cmd.Flags().StringVar(&flags.storeDriver, "store", "", "message log backend: memory, sqlite, redis")

	cmd.AddCommand(newAuditTailCmd(flags))
	return cmd
}

func newAuditTailCmd(flags *rootFlags) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "audit-tail",
		Short: "Print room log changes published to the audit topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := applog.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return audit.Consume(ctx, cfg.Audit, group, logger, func(_ context.Context, rec audit.Record) error {
				ev := logger.Info().Str("room", rec.Room).Str("action", rec.Action).Time("at", rec.At)
				if rec.Entry != nil {
					ev = ev.Str("role", rec.Entry.Role).Str("text", rec.Entry.Text)
				}
				ev.Msg("audit")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "chatroomai-audit-tail", "consumer group id")
	return cmd
}

func loadConfig(flags *rootFlags) (config.Config, string, error) {
	bootLevel := flags.logLevel
	if bootLevel == "" {
		bootLevel = "info"
	}
	bootLog := applog.New(bootLevel)

	cfg, path, err := config.Load(bootLog, flags.configPath)
	if err != nil {
		bootLog.Error().Err(err).Str("path", path).Msg("failed to load config")
		return cfg, path, err
	}

	cfg.UpdateFrom(config.Config{
		Port:     flags.port,
		LogLevel: flags.logLevel,
		Store:    config.StoreConfig{Driver: flags.storeDriver},
	})
	if err := cfg.Validate(); err != nil {
		bootLog.Error().Err(err).Msg("invalid configuration")
		return cfg, path, err
	}
	logConfig(bootLog, cfg)
	return cfg, path, nil
}

func logConfig(logger *zerolog.Logger, cfg config.Config) {
	logger.Debug().
		Int("port", cfg.Port).
		Str("static_dir", cfg.StaticDir).
		Bool("forget_empty_rooms", cfg.ForgetEmptyRooms).
		Dur("ai_timeout", cfg.AI.Timeout).
		Strs("audit_brokers", cfg.Audit.Brokers).
		Msg("configuration resolved")
}
