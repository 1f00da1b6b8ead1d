package config

import "time"

// RelayConfig is the root configuration for a relay instance.
type RelayConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Liveness  LivenessConfig  `yaml:"liveness"`
	Transport TransportConfig `yaml:"transport"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Static    StaticConfig    `yaml:"static"`
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LivenessConfig holds sweeper settings.
type LivenessConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Timeout       time.Duration `yaml:"timeout"`
}

// TransportConfig holds per-connection WebSocket settings.
type TransportConfig struct {
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	SendBufferSize int           `yaml:"send_buffer_size"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// StaticConfig holds optional web client hosting. Empty dir disables it.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}
