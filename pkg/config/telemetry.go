package config

import (
	"fmt"
	"strings"
	"time"
)

// TelemetryConfig names the service in exported signals and controls span export.
// Metrics are always collected and scraped from /metrics.
type TelemetryConfig struct {
	ServiceName string       `koanf:"servicename"`
	Traces      TracesConfig `koanf:"traces"`
}

type TracesConfig struct {
	Enabled bool `koanf:"enabled"`
	// SampleRatio is the fraction of root spans kept. Child spans follow their parent.
	SampleRatio float64        `koanf:"sampleratio"`
	OtlpHttp    OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

const defaultServiceName = "analytics"

func (c *TelemetryConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Telemetry ---\n")
	fmt.Fprintf(&b, "  servicename: %s\n", c.ServiceName)
	fmt.Fprintf(&b, "  traces.enabled: %v\n", c.Traces.Enabled)
	if c.Traces.Enabled {
		fmt.Fprintf(&b, "  traces.sampleratio: %.2f\n", c.Traces.SampleRatio)
		fmt.Fprintf(&b, "  traces.otlphttp: %s (insecure=%v, timeout=%v)\n",
			c.Traces.OtlpHttp.Endpoint, c.Traces.OtlpHttp.Insecure, c.Traces.OtlpHttp.Timeout)
	}
	return b.String()
}

func (c *TelemetryConfig) Validate() error {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if !c.Traces.Enabled {
		return nil
	}
	if c.Traces.OtlpHttp.Endpoint == "" {
		return fmt.Errorf("telemetry.traces.otlphttp.endpoint is not configured")
	}
	if c.Traces.OtlpHttp.Timeout <= 0 {
		return fmt.Errorf("telemetry.traces.otlphttp.timeout must be greater than 0")
	}
	if c.Traces.SampleRatio < 0 || c.Traces.SampleRatio > 1 {
		return fmt.Errorf("telemetry.traces.sampleratio must be between 0 and 1, got %v", c.Traces.SampleRatio)
	}
	if c.Traces.SampleRatio == 0 {
		c.Traces.SampleRatio = 1
	}
	return nil
}
