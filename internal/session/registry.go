package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/beamdrop/beamdrop/internal/netclass"
)

// Registry is the authoritative map of connection id → device record, with
// its derived group index. Every operation executes as one atomic step: no
// caller ever observes a partially updated registry or index.
type Registry interface {
	// Start begins the liveness sweeper.
	Start(ctx context.Context) error

	// Stop shuts the sweeper down.
	Stop(ctx context.Context) error

	// Register creates a record for id, discarding any stale record held
	// under the same id first. It returns the assigned group key and the
	// current members of that group excluding id itself.
	Register(id, address string) (groupKey string, peers []Device)

	// Touch refreshes id's liveness deadline. Unknown ids are a silent
	// no-op: heartbeats may race with eviction or disconnect.
	Touch(id string) bool

	// UpdateProfile sets the profile fields on id's record, leaving group
	// key and liveness untouched. No-op for unknown ids.
	UpdateProfile(id string, p Profile) (groupKey string, ok bool)

	// Deregister removes id from the registry and its group, pruning the
	// group entry if now empty. Returns the former group key so the caller
	// can notify remaining members; ok is false if id was already absent.
	Deregister(id string) (groupKey string, ok bool)

	// Get returns a copy of id's record.
	Get(id string) (Device, bool)

	// Members returns a snapshot of the connection ids in a group.
	Members(groupKey string) []string

	// SetEvictHandler installs the callback invoked once per sweeper
	// eviction. Must be called before Start.
	SetEvictHandler(fn func(Eviction))

	// Stats returns current registry size.
	Stats() Stats
}

// registry implements Registry. A single mutex covers every operation and
// each sweeper pass, which gives the run-to-completion-per-event property
// the relay layer depends on.
type registry struct {
	cfg     Config
	logger  *slog.Logger
	nowFn   func() time.Time
	onEvict func(Eviction)

	mu      sync.Mutex
	devices map[string]*Device
	groups  map[string]map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a Session Registry.
func NewRegistry(cfg Config, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	if cfg.LivenessTimeout <= 0 {
		cfg.LivenessTimeout = DefaultConfig().LivenessTimeout
	}

	return &registry{
		cfg:     cfg,
		logger:  logger,
		nowFn:   time.Now,
		devices: make(map[string]*Device),
		groups:  make(map[string]map[string]struct{}),
	}
}

// Start begins the background liveness sweeper.
func (r *registry) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sweepLoop(r.ctx)
	}()

	r.logger.Info("session registry started",
		"sweep_interval", r.cfg.SweepInterval,
		"liveness_timeout", r.cfg.LivenessTimeout,
	)
	return nil
}

// Stop shuts down the sweeper.
func (r *registry) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("session registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetEvictHandler installs the eviction callback.
func (r *registry) SetEvictHandler(fn func(Eviction)) {
	r.onEvict = fn
}

// Register creates a record for a new connection.
func (r *registry) Register(id, address string) (string, []Device) {
	key := netclass.GroupKey(address)

	r.mu.Lock()
	defer r.mu.Unlock()

	// A reconnect under the same id discards the stale record.
	if _, exists := r.devices[id]; exists {
		r.removeLocked(id)
		r.logger.Debug("replaced stale record", "id", id)
	}

	r.devices[id] = &Device{
		ID:       id,
		Address:  address,
		GroupKey: key,
		LastSeen: r.nowFn(),
	}

	members, ok := r.groups[key]
	if !ok {
		members = make(map[string]struct{})
		r.groups[key] = members
	}
	members[id] = struct{}{}

	peers := make([]Device, 0, len(members)-1)
	for peerID := range members {
		if peerID == id {
			continue
		}
		peers = append(peers, *r.devices[peerID])
	}

	r.logger.Info("device registered",
		"id", id,
		"group", key,
		"peers", len(peers),
	)
	return key, peers
}

// Touch refreshes the liveness deadline for id.
func (r *registry) Touch(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return false
	}
	d.LastSeen = r.nowFn()
	return true
}

// UpdateProfile sets the profile fields for id.
func (r *registry) UpdateProfile(id string, p Profile) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return "", false
	}
	d.Profile = &p
	return d.GroupKey, true
}

// Deregister removes id and returns its former group key.
func (r *registry) Deregister(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return "", false
	}
	key := d.GroupKey
	r.removeLocked(id)

	r.logger.Info("device deregistered", "id", id, "group", key)
	return key, true
}

// Get returns a copy of id's record.
func (r *registry) Get(id string) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return Device{}, false
	}
	return *d, true
}

// Members returns a snapshot of the ids in a group. Callers iterate the
// snapshot, never the live set: membership can change underneath them.
func (r *registry) Members(groupKey string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.groups[groupKey]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// Stats returns current registry size.
func (r *registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{
		Devices: len(r.devices),
		Groups:  len(r.groups),
	}
}

// removeLocked deletes id from the registry and the group index, pruning
// the group entry when it empties. Caller holds r.mu.
func (r *registry) removeLocked(id string) {
	d, ok := r.devices[id]
	if !ok {
		return
	}
	delete(r.devices, id)

	if members, ok := r.groups[d.GroupKey]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.groups, d.GroupKey)
		}
	}
}
