package router

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/beamdrop/beamdrop/internal/metrics"
	"github.com/beamdrop/beamdrop/internal/session"
)

// Sender delivers a marshalled envelope to one connection. Delivery is
// fire-and-forget: the return value reports only whether the message was
// queued, and nothing retries on false.
type Sender interface {
	Send(id string, data []byte) bool
}

// Router relays inbound envelopes between connections.
type Router interface {
	// HandleConnect registers a new connection, answers its discovery
	// query with the current group roster, and announces it to the rest
	// of the group.
	HandleConnect(id, address string)

	// HandleDisconnect removes a connection and announces its departure
	// to the remaining group members. Safe to call more than once.
	HandleDisconnect(id string)

	// HandleEviction announces a sweeper eviction. Registry removal has
	// already happened by the time this runs.
	HandleEviction(ev session.Eviction)

	// Dispatch routes one inbound envelope from an active connection.
	Dispatch(fromID string, data []byte)
}

type routerImpl struct {
	registry session.Registry
	sender   Sender
	metrics  *metrics.Metrics
	logger   *slog.Logger

	// mu serializes the four event handlers so each runs to completion
	// before the next begins. Connection goroutines and the sweeper's
	// evict callback all enter through them, and a connect interleaving
	// another handler between its registry update and its broadcast would
	// see a roster and a notice that disagree. Sends stay under the lock;
	// Sender.Send never blocks.
	mu sync.Mutex
}

// NewRouter creates a Router on top of the given registry and transport.
func NewRouter(registry session.Registry, sender Sender, m *metrics.Metrics, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &routerImpl{
		registry: registry,
		sender:   sender,
		metrics:  m,
		logger:   logger,
	}
}

// HandleConnect admits a new connection into its discovery group.
func (r *routerImpl) HandleConnect(id, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	groupKey, peers := r.registry.Register(id, address)
	r.metrics.DeviceConnected()

	roster := rosterMsg{
		Type:    KindDeviceInfo,
		ID:      id,
		Devices: make([]PeerInfo, 0, len(peers)),
	}
	for _, peer := range peers {
		info := PeerInfo{ID: peer.ID}
		if peer.Profile != nil {
			info.DeviceType = peer.Profile.DeviceType
			info.Icon = peer.Profile.Icon
			info.Name = peer.Profile.Name
		}
		roster.Devices = append(roster.Devices, info)
	}
	r.send(id, roster)

	r.broadcastToGroup(groupKey, id, KindDeviceJoined, deviceJoinedMsg{
		Type: KindDeviceJoined,
		ID:   id,
	})
}

// HandleDisconnect removes a connection and notifies its former group.
func (r *routerImpl) HandleDisconnect(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	groupKey, ok := r.registry.Deregister(id)
	if !ok {
		// Already gone: disconnect raced the sweeper or a duplicate close.
		return
	}
	r.metrics.DeviceGone()

	r.broadcastToGroup(groupKey, id, KindDeviceLeft, deviceLeftMsg{
		Type: KindDeviceLeft,
		ID:   id,
	})
}

// HandleEviction notifies the former group of a sweeper eviction.
func (r *routerImpl) HandleEviction(ev session.Eviction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.DeviceGone()
	r.metrics.RecordEviction()

	r.broadcastToGroup(ev.GroupKey, ev.ID, KindDeviceLeft, deviceLeftMsg{
		Type: KindDeviceLeft,
		ID:   ev.ID,
	})
}

// Dispatch routes one inbound envelope. Decode failures are logged and
// dropped; nothing here is fatal and no error ever reaches the sender.
func (r *routerImpl) Dispatch(fromID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Warn("undecodable envelope", "from", fromID, "error", err)
		return
	}

	switch env.Type {
	case KindHeartbeat:
		r.registry.Touch(fromID)

	case KindDeviceInfo:
		r.handleDeviceInfo(fromID, data)

	case KindSendMessage:
		var wire sendMessageWire
		if !r.decode(fromID, env.Type, data, &wire) {
			return
		}
		r.relayToTarget(env.Type, KindMessage, wire.TargetID, messageMsg{
			Type:    KindMessage,
			FromID:  fromID,
			Message: wire.Message,
		})

	case KindFileTransferRequest:
		var wire transferRequestWire
		if !r.decode(fromID, env.Type, data, &wire) {
			return
		}
		r.relayToTarget(env.Type, env.Type, wire.TargetID, transferRequestMsg{
			Type:       KindFileTransferRequest,
			FromID:     fromID,
			FileName:   wire.FileName,
			FileSize:   wire.FileSize,
			TransferID: wire.TransferID,
		})

	case KindFileTransferResponse:
		var wire transferResponseWire
		if !r.decode(fromID, env.Type, data, &wire) {
			return
		}
		r.relayToTarget(env.Type, env.Type, wire.TargetID, transferResponseMsg{
			Type:       KindFileTransferResponse,
			FromID:     fromID,
			TransferID: wire.TransferID,
			Accepted:   wire.Accepted,
		})

	case KindFileData:
		var wire fileDataWire
		if !r.decode(fromID, env.Type, data, &wire) {
			return
		}
		r.relayToTarget(env.Type, env.Type, wire.TargetID, fileDataMsg{
			Type:       KindFileData,
			FromID:     fromID,
			Chunk:      wire.Chunk,
			FileName:   wire.FileName,
			TransferID: wire.TransferID,
			Offset:     wire.Offset,
			TotalSize:  wire.TotalSize,
		})

	case KindCancelTransfer:
		var wire cancelTransferWire
		if !r.decode(fromID, env.Type, data, &wire) {
			return
		}
		r.relayToTarget(env.Type, env.Type, wire.TargetID, cancelTransferMsg{
			Type:       KindCancelTransfer,
			FromID:     fromID,
			TransferID: wire.TransferID,
		})

	case KindSignal:
		var wire signalWire
		if !r.decode(fromID, env.Type, data, &wire) {
			return
		}
		r.relayToTarget(env.Type, env.Type, wire.TargetID, signalMsg{
			Type:   KindSignal,
			FromID: fromID,
			Signal: wire.Signal,
		})

	case KindP2PFailed:
		var wire p2pFailedWire
		if !r.decode(fromID, env.Type, data, &wire) {
			return
		}
		r.relayToTarget(env.Type, env.Type, wire.TargetID, p2pFailedMsg{
			Type:       KindP2PFailed,
			FromID:     fromID,
			TransferID: wire.TransferID,
		})

	default:
		r.logger.Debug("skipping envelope kind", "kind", env.Type, "from", fromID)
	}
}

// handleDeviceInfo updates the sender's profile and announces it to the
// rest of the group.
func (r *routerImpl) handleDeviceInfo(fromID string, data []byte) {
	var wire deviceInfoWire
	if !r.decode(fromID, KindDeviceInfo, data, &wire) {
		return
	}

	groupKey, ok := r.registry.UpdateProfile(fromID, session.Profile{
		DeviceType: wire.DeviceType,
		Icon:       wire.Icon,
		Name:       wire.Name,
	})
	if !ok {
		return
	}

	r.broadcastToGroup(groupKey, fromID, KindDeviceInfoUpdate, deviceInfoUpdateMsg{
		Type:       KindDeviceInfoUpdate,
		ID:         fromID,
		DeviceType: wire.DeviceType,
		Icon:       wire.Icon,
		Name:       wire.Name,
	})
}

// relayToTarget delivers one envelope to a single connection. An unknown
// target is a silent no-op: the sender gets no delivery-failure signal.
// The target's group is deliberately not checked, so any live connection
// id is reachable by direct relay.
func (r *routerImpl) relayToTarget(inKind, outKind, targetID string, msg any) {
	if _, ok := r.registry.Get(targetID); !ok {
		r.logger.Debug("relay to unknown target dropped",
			"kind", inKind,
			"target", targetID,
		)
		return
	}
	if r.send(targetID, msg) {
		r.metrics.RecordRelay(outKind)
	}
}

// broadcastToGroup delivers one envelope to every group member except
// excludeID. It iterates a membership snapshot, not the live set.
func (r *routerImpl) broadcastToGroup(groupKey, excludeID, kind string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal broadcast", "kind", kind, "error", err)
		return
	}

	recipients := 0
	for _, id := range r.registry.Members(groupKey) {
		if id == excludeID {
			continue
		}
		r.sender.Send(id, data)
		recipients++
	}
	if recipients > 0 {
		r.metrics.RecordBroadcast(kind)
	}
}

// decode unmarshals an inbound payload, logging and swallowing failures.
func (r *routerImpl) decode(fromID, kind string, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		r.logger.Warn("malformed payload",
			"kind", kind,
			"from", fromID,
			"error", err,
		)
		return false
	}
	return true
}

// send marshals and queues one envelope for a single connection.
func (r *routerImpl) send(id string, msg any) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal envelope", "error", err)
		return false
	}
	return r.sender.Send(id, data)
}
