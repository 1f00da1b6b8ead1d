// Package session implements the Session Registry component.
//
// The Session Registry:
//   - Tracks one DeviceRecord per live transport connection
//   - Partitions connections into discovery groups by network locality
//   - Keeps the group index exactly consistent with the registry
//   - Evicts connections whose heartbeat has lapsed (liveness sweeper)
package session
