package config

import "fmt"

// LogConfig selects the slog level and handler. Format is "json" (default) or "text".
// Source attaches file:line to every record.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Source bool   `koanf:"source"`
}

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Log ---\n  level: %s\n  format: %s\n  source: %t\n", c.Level, c.Format, c.Source)
}

func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", c.Level)
	}
	switch c.Format {
	case "":
		c.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %q", c.Format)
	}
	return nil
}
