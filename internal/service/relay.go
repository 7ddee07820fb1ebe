package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
	"github.com/oggyb/whatsapp-relay/internal/domain/message"
	"github.com/oggyb/whatsapp-relay/internal/metrics"
	"github.com/oggyb/whatsapp-relay/internal/provider"
)

// ProviderFactory builds the configured provider adapter and callback parser.
type ProviderFactory interface {
	Kind() config.ProviderKind
	Provider() (provider.Provider, *config.ProviderConfig, error)
	Parser() (callback.Parser, error)
}

type RelayService interface {
	// SendMessages sends msgs through the configured provider. The error is
	// non-nil only when no provider could be built.
	SendMessages(ctx context.Context, msgs []message.Outbound, callbackBase string) ([]message.SendResult, error)

	// Translate parses a forwarded provider webhook.
	Translate(req callback.Request, callbackBase string) (*callback.Result, error)
}

type relayService struct {
	factory  ProviderFactory
	pipeline *Pipeline
	metrics  metrics.Recorder
	log      zerolog.Logger
}

// NewRelayService wires the pipeline to a provider factory.
func NewRelayService(factory ProviderFactory, pipeline *Pipeline, rec metrics.Recorder, log zerolog.Logger) RelayService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &relayService{
		factory:  factory,
		pipeline: pipeline,
		metrics:  rec,
		log:      log.With().Str("component", "relay").Logger(),
	}
}

func (s *relayService) SendMessages(ctx context.Context, msgs []message.Outbound, callbackBase string) ([]message.SendResult, error) {
	prov, cfg, err := s.factory.Provider()
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	return s.pipeline.SendBatch(ctx, prov, cfg.SegmentsPerSecond(), msgs, callbackBase), nil
}

func (s *relayService) Translate(req callback.Request, callbackBase string) (*callback.Result, error) {
	parser, err := s.factory.Parser()
	if err != nil {
		return nil, fmt.Errorf("load callback parser: %w", err)
	}

	res, err := Translate(parser, req, callbackBase)
	if err != nil {
		s.log.Warn().Err(err).Msg("callback rejected")
		return nil, err
	}

	kind := metrics.KindRejected
	switch {
	case len(res.DeliveryReports) > 0:
		kind = metrics.KindDelivery
	case len(res.IncomingMessages) > 0:
		kind = metrics.KindIncoming
	}
	s.metrics.CallbackTranslated(string(s.factory.Kind()), kind)
	s.log.Debug().Str("kind", kind).Str("uri", req.URI).Msg("callback translated")
	return res, nil
}
