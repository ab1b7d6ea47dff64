package config

import (
	"fmt"
	"strings"
	"time"
)

// AnalyticsConfig bounds the analytics queries. QueryTimeout caps a shared sales analytics
// computation, which keeps running for the remaining callers when the one that started it leaves.
type AnalyticsConfig struct {
	MaxPageSize  int32         `koanf:"maxpagesize"`
	QueryTimeout time.Duration `koanf:"querytimeout"`
}

const (
	defaultMaxPageSize  = 100
	defaultQueryTimeout = 30 * time.Second
)

func (c *AnalyticsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Analytics ---\n")
	b.WriteString(fmt.Sprintf("  maxpagesize: %d\n", c.MaxPageSize))
	b.WriteString(fmt.Sprintf("  querytimeout: %s\n", c.QueryTimeout))
	return b.String()
}

func (c *AnalyticsConfig) Validate() error {
	if c.MaxPageSize < 0 {
		return fmt.Errorf("analytics.maxpagesize must not be negative")
	}
	if c.MaxPageSize == 0 {
		c.MaxPageSize = defaultMaxPageSize
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("analytics.querytimeout must not be negative")
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
	return nil
}
