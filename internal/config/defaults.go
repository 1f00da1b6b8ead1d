package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort           = 3000
	DefaultSweepInterval  = 10 * time.Second
	DefaultTimeout        = 30 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
	DefaultPingInterval   = 15 * time.Second
	DefaultReadTimeout    = 60 * time.Second
	DefaultSendBufferSize = 64
	DefaultMaxMessageSize = 4 << 20 // binary chunk envelopes carry base64
	DefaultMetricsPort    = 9090
	DefaultMetricsPath    = "/metrics"
)

func (c *RelayConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Liveness.SweepInterval == 0 {
		c.Liveness.SweepInterval = DefaultSweepInterval
	}
	if c.Liveness.Timeout == 0 {
		c.Liveness.Timeout = DefaultTimeout
	}

	if c.Transport.WriteTimeout == 0 {
		c.Transport.WriteTimeout = DefaultWriteTimeout
	}
	if c.Transport.PingInterval == 0 {
		c.Transport.PingInterval = DefaultPingInterval
	}
	if c.Transport.ReadTimeout == 0 {
		c.Transport.ReadTimeout = DefaultReadTimeout
	}
	if c.Transport.SendBufferSize == 0 {
		c.Transport.SendBufferSize = DefaultSendBufferSize
	}
	if c.Transport.MaxMessageSize == 0 {
		c.Transport.MaxMessageSize = DefaultMaxMessageSize
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
