package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  host: 0.0.0.0
  port: 8443
metrics:
  port: 9100
static:
  dir: /srv/beamdrop/web
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("Server.Port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Metrics.Port != 9100 {
		t.Errorf("Metrics.Port = %d, want 9100", cfg.Metrics.Port)
	}
	if cfg.Static.Dir != "/srv/beamdrop/web" {
		t.Errorf("Static.Dir = %q, want %q", cfg.Static.Dir, "/srv/beamdrop/web")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_STATIC_DIR", "/var/www/drop")

	yaml := `
server:
  port: 3000
static:
  dir: ${TEST_STATIC_DIR}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Static.Dir != "/var/www/drop" {
		t.Errorf("Static.Dir = %q, want %q", cfg.Static.Dir, "/var/www/drop")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
server:
  host: 127.0.0.1
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Liveness.SweepInterval != DefaultSweepInterval {
		t.Errorf("Liveness.SweepInterval = %v, want default %v", cfg.Liveness.SweepInterval, DefaultSweepInterval)
	}
	if cfg.Liveness.Timeout != DefaultTimeout {
		t.Errorf("Liveness.Timeout = %v, want default %v", cfg.Liveness.Timeout, DefaultTimeout)
	}
	if cfg.Transport.SendBufferSize != DefaultSendBufferSize {
		t.Errorf("Transport.SendBufferSize = %d, want default %d", cfg.Transport.SendBufferSize, DefaultSendBufferSize)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want default %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() config does not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() RelayConfig {
		cfg := RelayConfig{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*RelayConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*RelayConfig) {},
			wantErr: "",
		},
		{
			name:    "port out of range",
			mutate:  func(c *RelayConfig) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "negative sweep interval",
			mutate:  func(c *RelayConfig) { c.Liveness.SweepInterval = -time.Second },
			wantErr: "liveness.sweep_interval must be positive",
		},
		{
			name: "timeout shorter than sweep interval",
			mutate: func(c *RelayConfig) {
				c.Liveness.SweepInterval = 10 * time.Second
				c.Liveness.Timeout = 5 * time.Second
			},
			wantErr: "liveness.timeout (5s) cannot be shorter than liveness.sweep_interval (10s)",
		},
		{
			name: "read timeout not above ping interval",
			mutate: func(c *RelayConfig) {
				c.Transport.PingInterval = 30 * time.Second
				c.Transport.ReadTimeout = 30 * time.Second
			},
			wantErr: "transport.read_timeout (30s) must exceed transport.ping_interval (30s)",
		},
		{
			name:    "zero send buffer",
			mutate:  func(c *RelayConfig) { c.Transport.SendBufferSize = -1 },
			wantErr: "transport.send_buffer_size must be >= 1",
		},
		{
			name:    "metrics port collides with server port",
			mutate:  func(c *RelayConfig) { c.Metrics.Port = c.Server.Port },
			wantErr: "metrics.port must differ from server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
