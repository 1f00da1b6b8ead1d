package router

import "encoding/json"

// Envelope kinds. Inbound kinds arrive from a device; outbound kinds are
// what the relay delivers. The transfer and signaling kinds appear on both
// sides: the relay swaps targetId for fromId and forwards the rest verbatim.
const (
	KindDeviceInfo           = "device-info"
	KindHeartbeat            = "heartbeat"
	KindSendMessage          = "send-message"
	KindMessage              = "message"
	KindDeviceJoined         = "device-joined"
	KindDeviceInfoUpdate     = "device-info-update"
	KindDeviceLeft           = "device-left"
	KindFileTransferRequest  = "file-transfer-request"
	KindFileTransferResponse = "file-transfer-response"
	KindFileData             = "file-data"
	KindCancelTransfer       = "cancel-transfer"
	KindSignal               = "signal"
	KindP2PFailed            = "p2p-failed"
)

// envelope is used for fast kind extraction.
type envelope struct {
	Type string `json:"type"`
}

// Inbound wire formats.

type deviceInfoWire struct {
	DeviceType string `json:"deviceType"`
	Icon       string `json:"icon"`
	Name       string `json:"name"`
}

type sendMessageWire struct {
	TargetID string `json:"targetId"`
	Message  string `json:"message"`
}

type transferRequestWire struct {
	TargetID   string `json:"targetId"`
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize"`
	TransferID string `json:"transferId"`
}

type transferResponseWire struct {
	TargetID   string `json:"targetId"`
	TransferID string `json:"transferId"`
	Accepted   bool   `json:"accepted"`
}

type fileDataWire struct {
	TargetID   string `json:"targetId"`
	Chunk      []byte `json:"chunk"` // base64 on the wire, never inspected
	FileName   string `json:"fileName"`
	TransferID string `json:"transferId"`
	Offset     int64  `json:"offset"`
	TotalSize  int64  `json:"totalSize"`
}

type cancelTransferWire struct {
	TargetID   string `json:"targetId"`
	TransferID string `json:"transferId"`
}

type signalWire struct {
	TargetID string          `json:"targetId"`
	Signal   json.RawMessage `json:"signal"` // opaque negotiation payload
}

type p2pFailedWire struct {
	TargetID   string `json:"targetId"`
	TransferID string `json:"transferId"`
}

// Outbound wire formats.

// PeerInfo is one entry in a discovery roster.
type PeerInfo struct {
	ID         string `json:"id"`
	DeviceType string `json:"deviceType,omitempty"`
	Icon       string `json:"icon,omitempty"`
	Name       string `json:"name,omitempty"`
}

type rosterMsg struct {
	Type    string     `json:"type"`
	ID      string     `json:"id"`
	Devices []PeerInfo `json:"devices"`
}

type deviceJoinedMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type deviceInfoUpdateMsg struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	DeviceType string `json:"deviceType"`
	Icon       string `json:"icon"`
	Name       string `json:"name"`
}

type deviceLeftMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type messageMsg struct {
	Type    string `json:"type"`
	FromID  string `json:"fromId"`
	Message string `json:"message"`
}

type transferRequestMsg struct {
	Type       string `json:"type"`
	FromID     string `json:"fromId"`
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize"`
	TransferID string `json:"transferId"`
}

type transferResponseMsg struct {
	Type       string `json:"type"`
	FromID     string `json:"fromId"`
	TransferID string `json:"transferId"`
	Accepted   bool   `json:"accepted"`
}

type fileDataMsg struct {
	Type       string `json:"type"`
	FromID     string `json:"fromId"`
	Chunk      []byte `json:"chunk"`
	FileName   string `json:"fileName"`
	TransferID string `json:"transferId"`
	Offset     int64  `json:"offset"`
	TotalSize  int64  `json:"totalSize"`
}

type cancelTransferMsg struct {
	Type       string `json:"type"`
	FromID     string `json:"fromId"`
	TransferID string `json:"transferId"`
}

type signalMsg struct {
	Type   string          `json:"type"`
	FromID string          `json:"fromId"`
	Signal json.RawMessage `json:"signal"`
}

type p2pFailedMsg struct {
	Type       string `json:"type"`
	FromID     string `json:"fromId"`
	TransferID string `json:"transferId"`
}
