package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/app"
	"github.com/oggyb/whatsapp-relay/internal/auth"
	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/handler"
	"github.com/oggyb/whatsapp-relay/internal/logger"
	"github.com/oggyb/whatsapp-relay/internal/metrics"
	routes "github.com/oggyb/whatsapp-relay/internal/router"
	"github.com/oggyb/whatsapp-relay/internal/server"
)

// @title                      WhatsApp Relay API
// @version                    1.0
// @description                Relays outbound WhatsApp batches to Inforu or Twilio and translates their webhooks.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the relay token.
func main() {
	// Base context for the whole application lifetime.
	rootCtx := context.Background()

	// Load configuration from environment/.env.
	cfg := config.New()

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid log level")
	}
	log = log.With().Str("app", cfg.App.Name).Logger()

	// Relay service, provider factory and optional template cache.
	relay, err := app.NewRelay(rootCtx, cfg, metrics.Prometheus{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init relay")
	}
	defer func() {
		if err := relay.Close(); err != nil {
			log.Warn().Err(err).Msg("closing relay resources")
		}
	}()

	if cfg.Callback.BaseURL == "" {
		log.Warn().Msg("CALLBACK_BASE_URL is not set; requests must carry universalCallbackUrl")
	}

	// Init Server
	srv, addr := newServer(cfg, relay, log)

	// Create a context that is cancelled on SIGINT/SIGTERM (Ctrl+C, docker stop etc.).
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the HTTP server in a separate goroutine so we can listen for signals.
	go func() {
		log.Info().
			Str("addr", addr).
			Str("provider", string(cfg.Provider.Kind)).
			Msg("HTTP server listening")

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Block until we receive a shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, starting graceful shutdown")

	// Give in-flight batches some time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server graceful shutdown failed")
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	log.Info().Msg("shutdown complete")
}

// newServer wires handlers and routes for the relay into an HTTP server.
func newServer(cfg *config.Config, relay *app.Relay, log zerolog.Logger) (*server.Server, string) {
	// Handlers
	homeHandler := handler.NewHomeHandler()
	relayHandler := handler.NewRelayHandler(
		relay.Service,
		auth.New(relay.Source, log),
		cfg.Callback.BaseURL,
		log,
	)

	// Init route dependencies
	deps := routes.AppDeps{
		Home:    homeHandler,
		Relay:   relayHandler,
		Metrics: promhttp.Handler(),
	}

	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	return server.New(addr, deps, log), addr
}
