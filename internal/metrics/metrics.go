// Package metrics records relay activity in Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oggyb/whatsapp-relay/internal/domain/message"
)

// Send outcomes.
const (
	OutcomeSent      = "sent"
	OutcomeRetryable = "retryable"
	OutcomeFailed    = "failed"
)

// Callback kinds.
const (
	KindDelivery = "delivery"
	KindIncoming = "incoming"
	KindRejected = "rejected"
)

var (
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_messages_sent_total",
		Help: "Messages handed to a provider, by outcome.",
	}, []string{"provider", "outcome"})

	SendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_send_duration_seconds",
		Help:    "Latency of single provider sends.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	ThrottleWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relay_throttle_wait_seconds",
		Help:    "Time messages spent waiting for a throttle slot.",
		Buckets: []float64{0, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	CallbacksTranslated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_callbacks_translated_total",
		Help: "Provider callbacks translated, by kind.",
	}, []string{"provider", "kind"})
)

// Recorder is what the service layer reports to.
type Recorder interface {
	MessageSent(provider string, res message.SendResult, took time.Duration)
	ThrottleWaited(d time.Duration)
	CallbackTranslated(provider, kind string)
}

// Prometheus records into the package collectors.
type Prometheus struct{}

var _ Recorder = Prometheus{}

func (Prometheus) MessageSent(provider string, res message.SendResult, took time.Duration) {
	MessagesSent.WithLabelValues(provider, Outcome(res)).Inc()
	SendDuration.WithLabelValues(provider).Observe(took.Seconds())
}

func (Prometheus) ThrottleWaited(d time.Duration) {
	ThrottleWait.Observe(d.Seconds())
}

func (Prometheus) CallbackTranslated(provider, kind string) {
	CallbacksTranslated.WithLabelValues(provider, kind).Inc()
}

// Nop discards everything.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) MessageSent(string, message.SendResult, time.Duration) {}
func (Nop) ThrottleWaited(time.Duration)                          {}
func (Nop) CallbackTranslated(string, string)                     {}

// Outcome labels a result.
func Outcome(res message.SendResult) string {
	switch {
	case res.SuccessfullySent:
		return OutcomeSent
	case res.IsRetryable:
		return OutcomeRetryable
	default:
		return OutcomeFailed
	}
}
