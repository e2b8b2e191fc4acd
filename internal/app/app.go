package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroomai/internal/audit"
	"github.com/vovakirdan/chatroomai/internal/config"
	"github.com/vovakirdan/chatroomai/internal/core"
	"github.com/vovakirdan/chatroomai/internal/llm"
	applog "github.com/vovakirdan/chatroomai/internal/log"
	"github.com/vovakirdan/chatroomai/internal/store"
	transporthttp "github.com/vovakirdan/chatroomai/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             core.Hub
	msgLog          core.MessageLog
	audit           audit.Sink
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	msgLog, err := store.Open(ctx, cfg.Store, applog.Component(logger, "store"))
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	sink := audit.New(cfg.Audit, applog.Component(logger, "audit"))

	completer := llm.NewClient(llm.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})
	logger.Info().Str("base_url", cfg.AI.BaseURL).Str("model", cfg.AI.Model).Msg("ai client configured")

	hub := core.NewHub(core.Options{
		Log:              msgLog,
		Completer:        completer,
		Audit:            sink,
		Logger:           applog.Component(logger, "hub"),
		WelcomeMessage:   cfg.WelcomeMessage,
		TimeFormat:       cfg.TimeFormat,
		ForgetEmptyRooms: cfg.ForgetEmptyRooms,
		AITimeout:        cfg.AI.Timeout,
	})
	server := transporthttp.NewServer(hub, cfg, applog.Component(logger, "http"))

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		msgLog:          msgLog,
		audit:           sink,
		log:             logger,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		a.hub.Run(hubCtx)
		close(hubDone)
	}()
	defer func() {
		stopHub()
		<-hubDone
		a.cleanup()
	}()

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		return <-serverErr
	}
}

// cleanup closes the message log and the audit sink.
func (a *App) cleanup() {
	if a.msgLog != nil {
		if err := a.msgLog.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close message log")
		} else {
			a.log.Info().Msg("message log closed")
		}
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close audit sink")
		}
	}
}
