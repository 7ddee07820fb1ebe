package config

import (
	"strconv"
	"strings"
)

// ProviderKind selects the WhatsApp provider the relay talks to.
type ProviderKind string

const (
	// ProviderInforu is the template-only JSON API.
	ProviderInforu ProviderKind = "inforu"
	// ProviderTwilio is the form-encoded Messages API with free-form and
	// template sends.
	ProviderTwilio ProviderKind = "twilio"
)

// ParseProviderKind normalises a configured provider name. Unknown names are
// returned lower-cased so the factory can report them.
func ParseProviderKind(v string) ProviderKind {
	return ProviderKind(strings.ToLower(strings.TrimSpace(v)))
}

// InforuConfig holds Inforu credentials and tuning.
type InforuConfig struct {
	Username          string
	Token             string
	APIURL            string
	SegmentsPerSecond int
	// RetryableStatusIDs lists StatusId values that mark a rejection as
	// transient.
	RetryableStatusIDs []int
}

// TwilioConfig holds Twilio credentials and tuning. The account pair
// authenticates Messages API calls, the API key pair Content API lookups.
type TwilioConfig struct {
	AccountSID        string
	AuthToken         string
	APIKeySID         string
	APIKeySecret      string
	BaseURL           string
	ContentURL        string
	Sender            string
	SegmentsPerSecond int
	// RetryableErrorCodes lists Twilio error codes that mark a failure as
	// transient, such as a full message queue.
	RetryableErrorCodes []int
}

// DefaultTwilioRetryableCodes are used when TWILIO_RETRYABLE_ERROR_CODES is
// unset. 30001 is queue overflow; rate limiting (20429) is already retried
// through its HTTP 429.
var DefaultTwilioRetryableCodes = []int{30001}

// ProviderConfig is exactly one of the provider configurations, selected by
// Kind.
type ProviderConfig struct {
	Kind   ProviderKind
	Inforu *InforuConfig
	Twilio *TwilioConfig
}

// SegmentsPerSecond is the outbound throughput cap; 0 means unthrottled.
func (p *ProviderConfig) SegmentsPerSecond() int {
	switch {
	case p == nil:
		return 0
	case p.Inforu != nil:
		return max(p.Inforu.SegmentsPerSecond, 0)
	case p.Twilio != nil:
		return max(p.Twilio.SegmentsPerSecond, 0)
	default:
		return 0
	}
}

// ProviderConfig loads the configuration for kind. It returns nil when any
// mandatory field is unset or kind is unknown.
func (s *EnvSource) ProviderConfig(kind ProviderKind) *ProviderConfig {
	switch kind {
	case ProviderInforu:
		c := &InforuConfig{
			Username:           s.Get("INFORU_USERNAME"),
			Token:              s.Get("INFORU_TOKEN"),
			APIURL:             s.Get("INFORU_API_URL"),
			SegmentsPerSecond:  s.int("INFORU_SEGMENTS_PER_SECOND"),
			RetryableStatusIDs: s.ints("INFORU_RETRYABLE_STATUS_IDS", nil),
		}
		if c.Username == "" || c.Token == "" {
			return nil
		}
		return &ProviderConfig{Kind: kind, Inforu: c}

	case ProviderTwilio:
		c := &TwilioConfig{
			AccountSID:          s.Get("TWILIO_ACCOUNT_SID"),
			AuthToken:           s.Get("TWILIO_AUTH_TOKEN"),
			APIKeySID:           s.Get("TWILIO_API_KEY_SID"),
			APIKeySecret:        s.Get("TWILIO_API_KEY_SECRET"),
			BaseURL:             s.Get("TWILIO_BASE_URL"),
			ContentURL:          s.Get("TWILIO_CONTENT_URL"),
			Sender:              s.Get("TWILIO_SENDER"),
			SegmentsPerSecond:   s.int("TWILIO_SEGMENTS_PER_SECOND"),
			RetryableErrorCodes: s.ints("TWILIO_RETRYABLE_ERROR_CODES", DefaultTwilioRetryableCodes),
		}
		if c.AccountSID == "" || c.AuthToken == "" || c.APIKeySID == "" || c.APIKeySecret == "" {
			return nil
		}
		return &ProviderConfig{Kind: kind, Twilio: c}

	default:
		return nil
	}
}

func (s *EnvSource) int(key string) int {
	n, err := strconv.Atoi(s.Get(key))
	if err != nil {
		return 0
	}
	return n
}

func (s *EnvSource) ints(key string, def []int) []int {
	parts := splitList(s.Get(key))
	if len(parts) == 0 {
		return def
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}
