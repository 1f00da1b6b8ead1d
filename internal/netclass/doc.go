// Package netclass maps peer network addresses to discovery group keys.
//
// Devices that classify to the same group key can discover each other;
// everything else is invisible to them. The mapping is deliberately coarse:
// each RFC1918 block is a single group, and public IPv4 addresses are
// bucketed by their /24.
package netclass
