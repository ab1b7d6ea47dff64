package config

import (
	"fmt"
	"net"
)

// PProfConfig serves net/http/pprof on a separate listener. The rates are passed to
// runtime.SetBlockProfileRate and runtime.SetMutexProfileFraction, zero keeps them off.
type PProfConfig struct {
	Enabled              bool   `koanf:"enabled"`
	Addr                 string `koanf:"addr"`
	BlockProfileRate     int    `koanf:"blockprofilerate"`
	MutexProfileFraction int    `koanf:"mutexprofilefraction"`
}

func (c *PProfConfig) String() string {
	if !c.Enabled {
		return "\n--- PProf ---\n  enabled: false\n"
	}
	return fmt.Sprintf("\n--- PProf ---\n  enabled: true\n  addr: %s\n  blockprofilerate: %d\n  mutexprofilefraction: %d\n",
		c.Addr, c.BlockProfileRate, c.MutexProfileFraction)
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof address %q: %w", c.Addr, err)
	}
	if c.BlockProfileRate < 0 || c.MutexProfileFraction < 0 {
		return fmt.Errorf("pprof profile rates must not be negative")
	}
	return nil
}
