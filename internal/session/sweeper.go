package session

import (
	"context"
	"time"
)

// sweepLoop runs the liveness sweeper until ctx is cancelled.
func (r *registry) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep evicts every device whose heartbeat has lapsed. The id set is
// snapshotted before any removal because eviction mutates the same maps
// the pass is walking. The whole pass holds the registry lock, so it never
// interleaves with an in-progress event step; the evict handler runs after
// the lock is released.
func (r *registry) sweep() {
	now := r.nowFn()

	r.mu.Lock()
	ids := make([]string, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}

	var evicted []Eviction
	for _, id := range ids {
		d, ok := r.devices[id]
		if !ok {
			continue
		}
		if now.Sub(d.LastSeen) <= r.cfg.LivenessTimeout {
			continue
		}
		key := d.GroupKey
		r.removeLocked(id)
		evicted = append(evicted, Eviction{ID: id, GroupKey: key})
	}
	r.mu.Unlock()

	for _, ev := range evicted {
		r.logger.Info("evicted stale device",
			"id", ev.ID,
			"group", ev.GroupKey,
			"timeout", r.cfg.LivenessTimeout,
		)
		if r.onEvict != nil {
			r.onEvict(ev)
		}
	}
}
