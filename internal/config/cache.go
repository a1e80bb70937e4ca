package config

import "time"

// CacheConfig defines settings for the response cache middleware that sits
// in front of the listing, review and reputation reads.  Availability is
// never cached.  When Enabled is false or no Redis client is configured,
// caching is disabled.
//
// KeyStrategy decides which parts of the request form the cache key:
// "route" and "method_route" use the request path and ignore the query,
// "method_route_query" and the default "route_query" include it.  Responses larger than MaxBodyBytes are served but not
// stored.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables.  Entries default to
// a five second lifetime.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      envSet("CACHE_METHODS", "GET"),
		TTL:          envDur("CACHE_TTL", 5*time.Second),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("CACHE_PREFIX", "ledger:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Second
	}
	return cfg
}
