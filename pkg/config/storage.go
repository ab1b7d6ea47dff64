package config

import (
	"fmt"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverNats     = "nats"
)

// StorageConfig selects the backend holding orders and products.
type StorageConfig struct {
	Driver string `koanf:"driver"`
}

func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case "":
		c.Driver = DriverPostgres
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Driver)
	}
	return nil
}

// UsesPostgres reports whether the database section must be configured.
func (c *StorageConfig) UsesPostgres() bool {
	return c.Driver == DriverPostgres
}
