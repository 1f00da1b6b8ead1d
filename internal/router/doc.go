// Package router dispatches inbound event envelopes between connections.
//
// The router is stateless: every decision is a registry lookup. Direct
// relays go to exactly one target connection; join/leave/profile notices
// broadcast to the other members of the sender's discovery group. A relay
// addressed to an unknown target is dropped silently, so senders own any
// retry decision.
package router
