package config

import (
	"errors"
	"fmt"
	"time"
)

// HTTPConfig configures the public listener. MaxRequestBytes caps GraphQL request bodies.
type HTTPConfig struct {
	Port            int   `koanf:"port"`
	MaxHeaderBytes  int   `koanf:"maxHeaderBytes"`
	MaxRequestBytes int64 `koanf:"maxRequestBytes"`
	Timeout         struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readHeader"`
	} `koanf:"timeout"`
}

const defaultMaxRequestBytes = 1 << 20

func (c *HTTPConfig) String() string {
	return fmt.Sprintf("\n--- HTTP Server ---\n  port: %d\n  maxHeaderBytes: %d\n  maxRequestBytes: %d\n"+
		"  timeout: read=%v write=%v idle=%v readHeader=%v\n",
		c.Port, c.MaxHeaderBytes, c.MaxRequestBytes,
		c.Timeout.Read, c.Timeout.Write, c.Timeout.Idle, c.Timeout.ReadHeader)
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	timeouts := map[string]time.Duration{
		"read":       c.Timeout.Read,
		"write":      c.Timeout.Write,
		"idle":       c.Timeout.Idle,
		"readHeader": c.Timeout.ReadHeader,
	}
	var errs []error
	for name, d := range timeouts {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("invalid HTTP server %s timeout: %v", name, d))
		}
	}
	if c.MaxRequestBytes < 0 {
		errs = append(errs, fmt.Errorf("invalid HTTP server maxRequestBytes: %d", c.MaxRequestBytes))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if c.MaxRequestBytes == 0 {
		c.MaxRequestBytes = defaultMaxRequestBytes
	}
	return nil
}
