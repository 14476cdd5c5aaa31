package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig tunes the Redis response cache sitting in front of the
// admin listings.  KeyStrategy decides whether the query string joins the
// route in the cache key; the default keeps it, so different status
// filters and limits cache independently.  MaxBodyBytes drops oversized
// responses from caching instead of storing them partially.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool // HTTP methods eligible for caching
    TTL          time.Duration
    KeyStrategy  string // "route" or "route_query"
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* environment variables.  The defaults
// cache GET responses for 30 seconds, a staleness the operator dashboard
// tolerates in exchange for not re-querying the database on every refresh.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "30s")),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

// Helpers shared by the config loaders in this package.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
