package config

import (
	"errors"
	"fmt"
)

// Validate checks that all values are usable.
func (c *RelayConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Liveness.SweepInterval <= 0 {
		return errors.New("liveness.sweep_interval must be positive")
	}
	if c.Liveness.Timeout <= 0 {
		return errors.New("liveness.timeout must be positive")
	}
	if c.Liveness.Timeout < c.Liveness.SweepInterval {
		return fmt.Errorf("liveness.timeout (%v) cannot be shorter than liveness.sweep_interval (%v)",
			c.Liveness.Timeout, c.Liveness.SweepInterval)
	}

	if c.Transport.WriteTimeout <= 0 {
		return errors.New("transport.write_timeout must be positive")
	}
	if c.Transport.PingInterval <= 0 {
		return errors.New("transport.ping_interval must be positive")
	}
	if c.Transport.ReadTimeout <= c.Transport.PingInterval {
		return fmt.Errorf("transport.read_timeout (%v) must exceed transport.ping_interval (%v)",
			c.Transport.ReadTimeout, c.Transport.PingInterval)
	}
	if c.Transport.SendBufferSize < 1 {
		return errors.New("transport.send_buffer_size must be >= 1")
	}
	if c.Transport.MaxMessageSize < 1 {
		return errors.New("transport.max_message_size must be >= 1")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if c.Metrics.Port == c.Server.Port {
		return errors.New("metrics.port must differ from server.port")
	}

	return nil
}
