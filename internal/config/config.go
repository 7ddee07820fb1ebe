package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings read once at startup. Provider
// credentials are not part of it; they are read per request through
// EnvSource so rotations are picked up without a restart.
type Config struct {
	App struct {
		Name     string
		Env      string
		LogLevel string
	}

	API struct {
		Host string
		Port string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Provider struct {
		Kind        ProviderKind
		HTTPTimeout time.Duration
	}

	Cache struct {
		ConfigTTL   time.Duration
		TemplateTTL time.Duration
	}

	Callback struct {
		BaseURL string
		// InforuIncoming lists candidate field names for Inforu inbound
		// messages, whose shape is not documented.
		InforuIncoming InboundFields
	}
}

// InboundFields lists candidate JSON field names per inbound-message field;
// the first present, non-empty one wins.
type InboundFields struct {
	Sender    []string
	Recipient []string
	Message   []string
}

// DefaultInforuIncoming are the field names tried when none are configured.
var DefaultInforuIncoming = InboundFields{
	Sender:    []string{"From", "Sender", "PhoneNumber"},
	Recipient: []string{"To", "Recipient", "ShortCode"},
	Message:   []string{"Message", "Body", "Text"},
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Name = getEnv("APP_NAME", "whatsapp-relay")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")

	// API
	cfg.API.Host = getEnv("API_HOST", "0.0.0.0")
	cfg.API.Port = getEnv("API_PORT", "8080")

	// Redis (optional; empty address disables the template cache)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	// Provider
	cfg.Provider.Kind = ParseProviderKind(getEnv("WHATSAPP_PROVIDER", string(ProviderInforu)))
	cfg.Provider.HTTPTimeout = getDuration("PROVIDER_HTTP_TIMEOUT", 20*time.Second)

	// Caches
	cfg.Cache.ConfigTTL = getDuration("CONFIG_CACHE_TTL", 5*time.Minute)
	cfg.Cache.TemplateTTL = getDuration("TEMPLATE_CACHE_TTL", time.Hour)

	// Callbacks
	cfg.Callback.BaseURL = getEnv("CALLBACK_BASE_URL", "")
	cfg.Callback.InforuIncoming = InboundFields{
		Sender:    getList("INFORU_INCOMING_SENDER_FIELDS", DefaultInforuIncoming.Sender),
		Recipient: getList("INFORU_INCOMING_RECIPIENT_FIELDS", DefaultInforuIncoming.Recipient),
		Message:   getList("INFORU_INCOMING_MESSAGE_FIELDS", DefaultInforuIncoming.Message),
	}

	return cfg
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getList(key string, def []string) []string {
	out := splitList(os.Getenv(key))
	if len(out) == 0 {
		return def
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
