package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(env map[string]string, ttl time.Duration) (*EnvSource, *int) {
	calls := 0
	s := NewEnvSource(ttl)
	s.lookup = func(key string) (string, bool) {
		calls++
		v, ok := env[key]
		return v, ok
	}
	return s, &calls
}

func TestEnvSource_CachesUntilTTL(t *testing.T) {
	env := map[string]string{"CREDENTIALS": " secret "}
	s, calls := newTestSource(env, 150*time.Millisecond)

	token, ok := s.Credentials()
	require.True(t, ok)
	assert.Equal(t, "secret", token)

	env["CREDENTIALS"] = "rotated"
	token, _ = s.Credentials()
	assert.Equal(t, "secret", token)
	assert.Equal(t, 1, *calls)

	time.Sleep(250 * time.Millisecond)
	token, _ = s.Credentials()
	assert.Equal(t, "rotated", token)
	assert.Equal(t, 2, *calls)
}

func TestEnvSource_HitsDoNotExtendTTL(t *testing.T) {
	env := map[string]string{"INFORU_USERNAME": "a"}
	s, calls := newTestSource(env, 200*time.Millisecond)

	deadline := time.Now().Add(350 * time.Millisecond)
	for time.Now().Before(deadline) {
		s.Get("INFORU_USERNAME")
		time.Sleep(20 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, *calls, 2)
}

func TestEnvSource_CachesMissingKeys(t *testing.T) {
	s, calls := newTestSource(map[string]string{}, time.Minute)

	assert.Empty(t, s.Get("TWILIO_SENDER"))
	assert.Empty(t, s.Get("TWILIO_SENDER"))
	assert.Equal(t, 1, *calls)
}

func TestEnvSource_NoCachingWithZeroTTL(t *testing.T) {
	env := map[string]string{"CREDENTIALS": "a"}
	s, calls := newTestSource(env, 0)

	s.Get("CREDENTIALS")
	s.Get("CREDENTIALS")
	assert.Equal(t, 2, *calls)

	delete(env, "CREDENTIALS")
	_, ok := s.Credentials()
	assert.False(t, ok)
}

func TestProviderConfig_Inforu(t *testing.T) {
	s, _ := newTestSource(map[string]string{
		"INFORU_USERNAME":             "user",
		"INFORU_TOKEN":                "token",
		"INFORU_SEGMENTS_PER_SECOND":  "4",
		"INFORU_RETRYABLE_STATUS_IDS": "-9, -10,x",
	}, 0)

	cfg := s.ProviderConfig(ProviderInforu)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.Inforu)
	assert.Nil(t, cfg.Twilio)
	assert.Equal(t, "user", cfg.Inforu.Username)
	assert.Equal(t, 4, cfg.SegmentsPerSecond())
	assert.Equal(t, []int{-9, -10}, cfg.Inforu.RetryableStatusIDs)
}

func TestProviderConfig_MissingMandatoryFieldYieldsNil(t *testing.T) {

	s, _ := newTestSource(map[string]string{"INFORU_USERNAME": "user"}, 0)
	assert.Nil(t, s.ProviderConfig(ProviderInforu))

	s, _ = newTestSource(map[string]string{
		"TWILIO_ACCOUNT_SID": "AC1",
		"TWILIO_AUTH_TOKEN":  "tok",
		"TWILIO_API_KEY_SID": "SK1",
	}, 0)
	assert.Nil(t, s.ProviderConfig(ProviderTwilio))

	assert.Nil(t, s.ProviderConfig(ProviderKind("other")))
}

func TestProviderConfig_Twilio(t *testing.T) {
	s, _ := newTestSource(map[string]string{
		"TWILIO_ACCOUNT_SID":    "AC1",
		"TWILIO_AUTH_TOKEN":     "tok",
		"TWILIO_API_KEY_SID":    "SK1",
		"TWILIO_API_KEY_SECRET": "sec",
		"TWILIO_SENDER":         "+14155550100",
	}, 0)

	cfg := s.ProviderConfig(ProviderTwilio)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.Twilio)
	assert.Equal(t, "+14155550100", cfg.Twilio.Sender)
	assert.Equal(t, DefaultTwilioRetryableCodes, cfg.Twilio.RetryableErrorCodes)
	assert.Zero(t, cfg.SegmentsPerSecond())
}

func TestSegmentsPerSecondNilSafe(t *testing.T) {
	var cfg *ProviderConfig
	assert.Zero(t, cfg.SegmentsPerSecond())

	neg := &ProviderConfig{Kind: ProviderInforu, Inforu: &InforuConfig{SegmentsPerSecond: -3}}
	assert.Zero(t, neg.SegmentsPerSecond())
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("WHATSAPP_PROVIDER", " Twilio ")
	t.Setenv("INFORU_INCOMING_SENDER_FIELDS", "Phone, Msisdn")
	t.Setenv("PROVIDER_HTTP_TIMEOUT", "bogus")

	cfg := New()

	assert.Equal(t, ProviderTwilio, cfg.Provider.Kind)
	assert.Equal(t, 20*time.Second, cfg.Provider.HTTPTimeout)
	assert.Equal(t, []string{"Phone", "Msisdn"}, cfg.Callback.InforuIncoming.Sender)
	assert.Equal(t, DefaultInforuIncoming.Message, cfg.Callback.InforuIncoming.Message)
}
