// Package config holds the configuration of the analytics service.
package config

import (
	"strings"

	"github.com/abgdnv/gocommerce-analytics/pkg/config"
	"github.com/abgdnv/gocommerce-analytics/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Storage    config.StorageConfig    `koanf:"storage"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Cache      config.CacheConfig      `koanf:"cache"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Analytics  config.AnalyticsConfig  `koanf:"analytics"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
}

// String renders every section with credentials masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Storage.String())
	if c.Storage.UsesPostgres() {
		b.WriteString(c.Database.String())
	}
	if c.NatsEnabled() {
		b.WriteString(c.Nats.String())
	}
	b.WriteString(c.Cache.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Analytics.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Telemetry.String())
	return b.String()
}

// NatsEnabled reports whether a NATS connection is needed, either for the cache bucket or for order events.
func (c *Config) NatsEnabled() bool {
	return c.Cache.UsesNats() || c.Nats.Url != ""
}

// Validate checks every section and fills in defaults.
// The database and NATS sections are only required by the backends that use them.
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Storage.UsesPostgres() {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if c.NatsEnabled() {
		if err := c.Nats.Validate(); err != nil {
			return err
		}
	}
	if err := c.Resilience.Validate(); err != nil {
		return err
	}
	if err := c.Analytics.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return nil
}
