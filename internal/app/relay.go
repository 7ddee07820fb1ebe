// Package app wires the relay's components from a Config. Both the HTTP
// server and the operator CLI build their services through it.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/cache"
	"github.com/oggyb/whatsapp-relay/internal/cache/redis"
	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/metrics"
	"github.com/oggyb/whatsapp-relay/internal/provider/factory"
	"github.com/oggyb/whatsapp-relay/internal/service"
)

// Relay bundles what the entry points need.
type Relay struct {
	Service service.RelayService
	Source  *config.EnvSource

	closers []func() error
}

// Close releases connections opened by NewRelay.
func (r *Relay) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewRelay builds the relay service. Redis is only dialled when
// REDIS_ADDR is set; without it template lookups go uncached.
func NewRelay(ctx context.Context, cfg *config.Config, rec metrics.Recorder, log zerolog.Logger) (*Relay, error) {
	r := &Relay{Source: config.NewEnvSource(cfg.Cache.ConfigTTL)}

	var templateCache cache.Cache
	if cfg.Redis.Addr != "" {
		client := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		templateCache = client
		r.closers = append(r.closers, client.Close)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("template cache enabled")
	}

	providers := factory.New(factory.Options{
		Kind:           cfg.Provider.Kind,
		HTTPTimeout:    cfg.Provider.HTTPTimeout,
		TemplateCache:  templateCache,
		TemplateTTL:    cfg.Cache.TemplateTTL,
		InforuIncoming: cfg.Callback.InforuIncoming,
	}, r.Source, log)

	r.Service = service.NewRelayService(providers, service.NewPipeline(rec, log), rec, log)
	return r, nil
}
