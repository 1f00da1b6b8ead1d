package session

import "time"

// Profile holds the optional self-description a device announces after
// connecting. Absent (nil on Device) until the first device-info event.
type Profile struct {
	DeviceType string
	Icon       string
	Name       string
}

// Device is the registry record for one live connection.
type Device struct {
	ID       string
	Address  string
	GroupKey string // assigned at registration, immutable
	LastSeen time.Time
	Profile  *Profile
}

// Eviction describes a device removed by the liveness sweeper.
type Eviction struct {
	ID       string
	GroupKey string
}

// Stats provides a snapshot of registry size.
type Stats struct {
	Devices int
	Groups  int
}

// Config holds Session Registry configuration.
type Config struct {
	SweepInterval   time.Duration // how often the sweeper runs
	LivenessTimeout time.Duration // max silence before eviction
}

// DefaultConfig returns the reference liveness behavior.
func DefaultConfig() Config {
	return Config{
		SweepInterval:   10 * time.Second,
		LivenessTimeout: 30 * time.Second,
	}
}
