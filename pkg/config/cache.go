package config

import (
	"fmt"
	"strings"
	"time"
)

// CacheConfig configures the result cache used by the sales analytics query.
type CacheConfig struct {
	Driver string        `koanf:"driver"`
	Bucket string        `koanf:"bucket"`
	TTL    time.Duration `koanf:"ttl"`
}

const (
	defaultCacheBucket = "analytics"
	defaultCacheTTL    = 60 * time.Second
)

func (c *CacheConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Cache ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  bucket: %s\n", c.Bucket))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	return b.String()
}

func (c *CacheConfig) Validate() error {
	switch c.Driver {
	case "":
		c.Driver = DriverNats
	case DriverNats, DriverMemory:
	default:
		return fmt.Errorf("unsupported cache driver: %q", c.Driver)
	}
	if c.Bucket == "" {
		c.Bucket = defaultCacheBucket
	}
	if c.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative: %s", c.TTL)
	}
	if c.TTL == 0 {
		c.TTL = defaultCacheTTL
	}
	return nil
}

// UsesNats reports whether a NATS connection is required for the cache.
func (c *CacheConfig) UsesNats() bool {
	return c.Driver == DriverNats
}
