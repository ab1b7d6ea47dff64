package config

import (
	"fmt"
	"time"
)

// ShutdownConfig controls the stop sequence. For Drain the readiness endpoint reports
// unavailable while requests are still served, then servers get Timeout to finish.
type ShutdownConfig struct {
	Drain   time.Duration `koanf:"drain"`
	Timeout time.Duration `koanf:"timeout"`
}

const defaultShutdownTimeout = 10 * time.Second

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  drain: %s\n  timeout: %s\n", c.Drain, c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	switch {
	case c.Drain < 0:
		return fmt.Errorf("shutdown drain must not be negative: %s", c.Drain)
	case c.Timeout < 0:
		return fmt.Errorf("shutdown timeout must not be negative: %s", c.Timeout)
	case c.Timeout == 0:
		c.Timeout = defaultShutdownTimeout
	}
	return nil
}
