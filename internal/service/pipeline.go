package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/domain/message"
	"github.com/oggyb/whatsapp-relay/internal/metrics"
	"github.com/oggyb/whatsapp-relay/internal/provider"
	"github.com/oggyb/whatsapp-relay/internal/throttle"
)

// Pipeline sends a batch one message at a time, spacing admissions through
// a throttle gate when the provider has a throughput cap.
type Pipeline struct {
	newGate func() *throttle.Gate
	metrics metrics.Recorder
	log     zerolog.Logger
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithGateFactory overrides how per-batch gates are built. Used in tests to
// inject a fake clock.
func WithGateFactory(f func() *throttle.Gate) PipelineOption {
	return func(p *Pipeline) {
		if f != nil {
			p.newGate = f
		}
	}
}

// NewPipeline returns a Pipeline reporting to rec.
func NewPipeline(rec metrics.Recorder, log zerolog.Logger, opts ...PipelineOption) *Pipeline {
	if rec == nil {
		rec = metrics.Nop{}
	}
	p := &Pipeline{
		newGate: func() *throttle.Gate { return throttle.New() },
		metrics: rec,
		log:     log.With().Str("component", "pipeline").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// SendBatch returns exactly one result per message, in input order. Every
// failure, including a panicking adapter, is encoded in the result.
// A non-positive segmentsPerSecond sends without throttling.
func (p *Pipeline) SendBatch(
	ctx context.Context,
	prov provider.Provider,
	segmentsPerSecond int,
	msgs []message.Outbound,
	callbackBase string,
) []message.SendResult {
	log := p.log.With().
		Str("invocation_id", uuid.NewString()).
		Str("provider", prov.Name()).
		Logger()
	log.Info().Int("messages", len(msgs)).Int("segments_per_second", segmentsPerSecond).Msg("batch started")

	var gate *throttle.Gate
	if segmentsPerSecond > 0 {
		gate = p.newGate()
	}

	results := make([]message.SendResult, 0, len(msgs))
	var sent int
	for _, msg := range msgs {
		if gate != nil {
			waited, err := gate.Wait(ctx, message.Segments(msg.Message), segmentsPerSecond)
			if err != nil {
				res := message.Failed(msg, true, fmt.Sprintf("send aborted: %v", err))
				p.metrics.MessageSent(prov.Name(), res, 0)
				results = append(results, res)
				continue
			}
			p.metrics.ThrottleWaited(waited)
		}

		start := time.Now()
		res := p.sendOne(ctx, log, prov, msg, callbackBase)
		took := time.Since(start)
		p.metrics.MessageSent(prov.Name(), res, took)

		if res.SuccessfullySent {
			sent++
		} else {
			log.Warn().
				Int64("batch_id", msg.BatchID).
				Int64("message_id", msg.MessageID).
				Bool("retryable", res.IsRetryable).
				Str("error", res.Error()).
				Msg("message not sent")
		}
		results = append(results, res)
	}

	log.Info().Int("sent", sent).Int("failed", len(msgs)-sent).Msg("batch finished")
	return results
}

func (p *Pipeline) sendOne(
	ctx context.Context,
	log zerolog.Logger,
	prov provider.Provider,
	msg message.Outbound,
	callbackBase string,
) (res message.SendResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("message_id", msg.MessageID).Msg("adapter panicked")
			res = message.Failed(msg, false, fmt.Sprint(r))
		}
	}()

	res = provider.Send(ctx, prov, msg, callbackBase)
	res.BatchID, res.MessageID = msg.BatchID, msg.MessageID
	return res
}
