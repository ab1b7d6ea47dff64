package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResilienceConfig tunes how the service protects itself from a failing result cache.
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// CircuitBreakerConfig trips the breaker on a run of consecutive failures, or once the failure
// rate exceeds ErrorRatePercent after at least MinRequests calls in the current Interval.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	MinRequests         uint32        `koanf:"minrequests"`
	Interval            time.Duration `koanf:"interval"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

const defaultBreakerMinRequests = 10

func (c *ResilienceConfig) String() string {
	cb := c.CircuitBreaker
	return fmt.Sprintf("\n--- Cache Circuit Breaker ---\n  consecutivefailures: %d\n  errorratepercent: %d\n  minrequests: %d\n  interval: %v\n  opentimeout: %v\n",
		cb.ConsecutiveFailures, cb.ErrorRatePercent, cb.MinRequests, cb.Interval, cb.OpenTimeout)
}

func (c *ResilienceConfig) Validate() error {
	if err := c.CircuitBreaker.Validate(); err != nil {
		return fmt.Errorf("resilience.circuitbreaker: %w", err)
	}
	return nil
}

func (c *CircuitBreakerConfig) Validate() error {
	var errs []string
	if c.ConsecutiveFailures == 0 {
		errs = append(errs, "consecutivefailures must be greater than 0")
	}
	if c.ErrorRatePercent < 0 || c.ErrorRatePercent > 100 {
		errs = append(errs, "errorratepercent must be between 0 and 100")
	}
	if c.Interval < 0 {
		errs = append(errs, "interval must not be negative")
	}
	if c.OpenTimeout <= 0 {
		errs = append(errs, "opentimeout must be greater than 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	if c.MinRequests == 0 {
		c.MinRequests = defaultBreakerMinRequests
	}
	return nil
}
