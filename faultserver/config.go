package faultserver

import (
	"fmt"
	"time"
)

// Defaults for the rollback test server.
const (
	DefaultPort = 8080

	// DemoFailRate and DemoDelay are the settings forced by demo mode.
	DemoFailRate = 0.3
	DemoDelay    = 500 * time.Millisecond
)

// Config is the rollback server's startup configuration. It is resolved
// once before the listener binds and never changes afterwards.
type Config struct {
	// Port to bind on loopback.
	Port int

	// FailRate is the probability in [0.0, 1.0] that a request is
	// answered with a simulated 5xx failure.
	FailRate float64

	// Delay is artificial latency applied to every request, successes
	// and failures alike.
	Delay time.Duration
}

// WithDemo returns the configuration with demo-mode settings applied:
// a 30% failure rate and 500ms delay, overriding whatever was set.
func (c Config) WithDemo() Config {
	c.FailRate = DemoFailRate
	c.Delay = DemoDelay
	return c
}

// Validate reports a configuration the server must refuse to start with.
func (c Config) Validate() error {
	if c.FailRate < 0.0 || c.FailRate > 1.0 {
		return fmt.Errorf("fail-rate must be between 0.0 and 1.0, got %v", c.FailRate)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %v", c.Delay)
	}
	return nil
}
