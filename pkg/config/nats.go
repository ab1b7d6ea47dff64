package config

import (
	"fmt"
	"net/url"
	"time"
)

// NATSConfig holds the connection settings shared by the cache bucket and the event publisher.
// MaxReconnects of -1 retries forever, zero values keep the client defaults.
type NATSConfig struct {
	Url           string        `koanf:"url"`
	Timeout       time.Duration `koanf:"timeout"`
	ClientName    string        `koanf:"clientname"`
	MaxReconnects int           `koanf:"maxreconnects"`
	ReconnectWait time.Duration `koanf:"reconnectwait"`
}

func (c *NATSConfig) String() string {
	return fmt.Sprintf("\n--- NATS ---\n  url: %s\n  timeout: %s\n  clientname: %s\n  maxreconnects: %d\n  reconnectwait: %s\n",
		MaskURL(c.Url), c.Timeout, c.ClientName, c.MaxReconnects, c.ReconnectWait)
}

func (c *NATSConfig) Validate() error {
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	u, err := url.Parse(c.Url)
	if err != nil {
		return fmt.Errorf("invalid NATS URL: %w", err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("NATS URL must start with 'nats://' or 'tls://'")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	if c.MaxReconnects < -1 {
		return fmt.Errorf("nats maxreconnects must be -1 or greater, got %d", c.MaxReconnects)
	}
	if c.ReconnectWait < 0 {
		return fmt.Errorf("nats reconnectwait must not be negative")
	}
	return nil
}
