// Package cache provides the optional key-value accelerator that sits in
// front of the puzzle store.
//
// The variant is chosen once at startup: None when caching is disabled,
// Memory for a single process, Redis when several processes share a cache.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"svw.info/tiles/internal/ports"
)

// Config selects and configures a cache variant.
type Config struct {
	// Driver is none, memory or redis. An empty driver with RedisURL set
	// means redis.
	Driver   string
	RedisURL string
}

// New builds the cache described by cfg.
func New(cfg Config) (ports.Cache, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" && cfg.RedisURL != "" {
		driver = "redis"
	}
	switch driver {
	case "", "none", "off":
		return None{}, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("cache driver redis needs a redis url")
		}
		return NewRedisFromURL(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// None is the no-cache variant: every Get misses and Set does nothing.
type None struct{}

func (None) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (None) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (None) Close() error { return nil }

var _ ports.Cache = None{}
