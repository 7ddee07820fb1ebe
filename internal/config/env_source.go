package config

import (
	"os"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// EnvSource reads request-time settings (caller credentials and provider
// configuration) from the environment and caches each lookup for ttl.
// A non-positive ttl disables caching.
type EnvSource struct {
	ttl    time.Duration
	lookup func(string) (string, bool)
	cache  *ttlcache.Cache[string, string]
}

// NewEnvSource returns an EnvSource backed by os.LookupEnv.
func NewEnvSource(ttl time.Duration) *EnvSource {
	s := &EnvSource{ttl: ttl, lookup: os.LookupEnv}
	if ttl > 0 {
		loader := ttlcache.LoaderFunc[string, string](
			func(c *ttlcache.Cache[string, string], key string) *ttlcache.Item[string, string] {
				return c.Set(key, s.read(key), ttlcache.DefaultTTL)
			},
		)
		s.cache = ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](ttl),
			ttlcache.WithDisableTouchOnHit[string, string](),
			ttlcache.WithLoader[string, string](loader),
		)
	}
	return s
}

// Get returns the trimmed value of key, served from cache while fresh.
func (s *EnvSource) Get(key string) string {
	if s.cache == nil {
		return s.read(key)
	}
	if item := s.cache.Get(key); item != nil {
		return item.Value()
	}
	return s.read(key)
}

// Credentials returns the bearer token callers must present.
func (s *EnvSource) Credentials() (string, bool) {
	v := s.Get("CREDENTIALS")
	return v, v != ""
}

func (s *EnvSource) read(key string) string {
	v, _ := s.lookup(key)
	return strings.TrimSpace(v)
}
