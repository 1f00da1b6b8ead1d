package session

import (
	"testing"
	"time"
)

func TestSweep_EvictsStaleDevices(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil).(*registry)

	base := time.Now()
	r.nowFn = func() time.Time { return base }

	r.Register("stale", "192.168.1.10")
	r.Register("fresh", "192.168.1.20")

	var evictions []Eviction
	r.SetEvictHandler(func(ev Eviction) {
		evictions = append(evictions, ev)
	})

	// Only "fresh" heartbeats before the deadline.
	r.nowFn = func() time.Time { return base.Add(20 * time.Second) }
	r.Touch("fresh")

	r.nowFn = func() time.Time { return base.Add(31 * time.Second) }
	r.sweep()

	if len(evictions) != 1 {
		t.Fatalf("len(evictions) = %d, want 1", len(evictions))
	}
	if evictions[0].ID != "stale" {
		t.Errorf("evicted id = %q, want %q", evictions[0].ID, "stale")
	}
	if evictions[0].GroupKey != "private-192" {
		t.Errorf("evicted group = %q, want %q", evictions[0].GroupKey, "private-192")
	}

	if _, ok := r.Get("stale"); ok {
		t.Error("stale device still registered after sweep")
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Error("fresh device evicted despite heartbeat")
	}
}

func TestSweep_HeartbeatPreventsEviction(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil).(*registry)

	base := time.Now()
	now := base
	r.nowFn = func() time.Time { return now }

	r.Register("a", "192.168.1.10")

	evicted := 0
	r.SetEvictHandler(func(Eviction) { evicted++ })

	// Heartbeat every 20s across two minutes; sweep after each one.
	for i := 0; i < 6; i++ {
		now = now.Add(20 * time.Second)
		r.Touch("a")
		now = now.Add(time.Second)
		r.sweep()
	}

	if evicted != 0 {
		t.Errorf("evictions = %d, want 0 for a device heartbeating every 20s", evicted)
	}
	if _, ok := r.Get("a"); !ok {
		t.Error("device evicted despite regular heartbeats")
	}
}

func TestSweep_ExactlyOneEvictionPerDevice(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil).(*registry)

	base := time.Now()
	r.nowFn = func() time.Time { return base }
	r.Register("a", "192.168.1.10")

	evicted := 0
	r.SetEvictHandler(func(Eviction) { evicted++ })

	r.nowFn = func() time.Time { return base.Add(time.Minute) }
	r.sweep()
	r.sweep() // second pass finds nothing

	if evicted != 1 {
		t.Errorf("evictions = %d, want exactly 1", evicted)
	}
}

func TestSweep_AtDeadlineNotEvicted(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil).(*registry)

	base := time.Now()
	r.nowFn = func() time.Time { return base }
	r.Register("a", "192.168.1.10")

	// Exactly at the timeout is still alive; eviction requires exceeding it.
	r.nowFn = func() time.Time { return base.Add(30 * time.Second) }
	r.sweep()

	if _, ok := r.Get("a"); !ok {
		t.Error("device evicted exactly at the liveness deadline")
	}
}
