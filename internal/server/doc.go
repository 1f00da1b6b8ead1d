// Package server provides the WebSocket transport for the relay.
//
// Each device holds one persistent connection with a read pump and a write
// pump. Outbound delivery is fire-and-forget through a bounded per-connection
// send buffer: a slow consumer loses messages rather than stalling the relay.
package server
