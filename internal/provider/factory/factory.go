// Package factory builds the configured provider adapter and callback parser.
package factory

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/cache"
	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
	"github.com/oggyb/whatsapp-relay/internal/provider"
	"github.com/oggyb/whatsapp-relay/internal/provider/inforu"
	"github.com/oggyb/whatsapp-relay/internal/provider/twilio"
)

var (
	// ErrMissingConfig is returned when a mandatory provider setting is unset.
	ErrMissingConfig = errors.New("missing provider configuration")
	// ErrUnknownProvider is returned for an unsupported WHATSAPP_PROVIDER.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ConfigSource yields the provider configuration, nil when incomplete.
type ConfigSource interface {
	ProviderConfig(kind config.ProviderKind) *config.ProviderConfig
}

// Options are the process-level settings adapters share.
type Options struct {
	Kind           config.ProviderKind
	HTTPTimeout    time.Duration
	TemplateCache  cache.Cache
	TemplateTTL    time.Duration
	InforuIncoming config.InboundFields
	// HTTPClient overrides the adapters' HTTP client.
	HTTPClient provider.HTTPClient
}

// Factory builds adapters from freshly loaded configuration, so credential
// rotations take effect once the config source cache expires.
type Factory struct {
	opts   Options
	source ConfigSource
	log    zerolog.Logger
}

// New returns a Factory reading credentials from source.
func New(opts Options, source ConfigSource, log zerolog.Logger) *Factory {
	return &Factory{opts: opts, source: source, log: log}
}

// Kind is the configured provider.
func (f *Factory) Kind() config.ProviderKind { return f.opts.Kind }

// Provider loads the provider configuration and builds its adapter. The
// returned configuration carries the throughput cap.
func (f *Factory) Provider() (provider.Provider, *config.ProviderConfig, error) {
	if !f.known() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, f.opts.Kind)
	}

	cfg := f.source.ProviderConfig(f.opts.Kind)
	if cfg == nil {
		f.log.Error().Str("provider", string(f.opts.Kind)).Msg("provider configuration incomplete")
		return nil, nil, ErrMissingConfig
	}

	switch {
	case cfg.Inforu != nil:
		return inforu.New(*cfg.Inforu, f.log,
			inforu.WithHTTPClient(f.opts.HTTPClient),
			inforu.WithRequestTimeout(f.opts.HTTPTimeout),
		), cfg, nil
	case cfg.Twilio != nil:
		return twilio.New(*cfg.Twilio, f.log,
			twilio.WithHTTPClient(f.opts.HTTPClient),
			twilio.WithRequestTimeout(f.opts.HTTPTimeout),
			twilio.WithTemplateCache(f.opts.TemplateCache, f.opts.TemplateTTL),
		), cfg, nil
	default:
		return nil, nil, ErrMissingConfig
	}
}

// Parser returns the callback parser of the configured provider. Parsing
// needs no credentials.
func (f *Factory) Parser() (callback.Parser, error) {
	switch f.opts.Kind {
	case config.ProviderInforu:
		return inforu.NewCallbackParser(f.opts.InforuIncoming), nil
	case config.ProviderTwilio:
		return twilio.CallbackParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, f.opts.Kind)
	}
}

func (f *Factory) known() bool {
	return f.opts.Kind == config.ProviderInforu || f.opts.Kind == config.ProviderTwilio
}
