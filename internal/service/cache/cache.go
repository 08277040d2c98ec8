// Package cache provides the byte cache used in front of the market-data
// feed. The in-memory TTL cache is the default; Redis can be enabled for
// deployments where several instances share one feed quota.
package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

// Config selects and configures the cache backend.
type Config struct {
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New returns the configured cache backend.
func New(cfg Config) BytesCache {
	if cfg.RedisEnabled {
		return NewRedisCache(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return NewTTLCache()
}
