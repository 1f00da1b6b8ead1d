package netclass

import (
	"fmt"
	"net/netip"
)

// Group tags for addresses that do not bucket by prefix.
const (
	// One tag per RFC1918 block. Every device inside a block lands in the
	// same group regardless of its exact subnet.
	TagPrivate10  = "private-10"
	TagPrivate172 = "private-172"
	TagPrivate192 = "private-192"

	// TagLocalV6 covers IPv6 loopback, link-local, and ULA addresses.
	TagLocalV6 = "local-v6"

	// TagUnknown is the deterministic fallback for unparseable addresses.
	TagUnknown = "unknown"
)

// GroupKey maps a peer address to its discovery group key. The address may
// carry a port ("192.168.1.5:52110", "[::1]:80"), which is ignored.
//
// Private IPv4 addresses map to a fixed per-block tag, public IPv4 to the
// first three octets (a /24 bucket). IPv6 local address forms collapse into
// a single tag; global IPv6 buckets by /48. Classification never fails:
// anything unparseable yields TagUnknown.
func GroupKey(address string) string {
	host := address
	if ap, err := netip.ParseAddrPort(address); err == nil {
		host = ap.Addr().String()
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return TagUnknown
	}
	addr = addr.Unmap()

	if addr.Is4() {
		b := addr.As4()
		switch {
		case b[0] == 10:
			return TagPrivate10
		case b[0] == 172 && b[1] >= 16 && b[1] <= 31:
			return TagPrivate172
		case b[0] == 192 && b[1] == 168:
			return TagPrivate192
		}
		return fmt.Sprintf("%d.%d.%d", b[0], b[1], b[2])
	}

	if addr.IsLoopback() || addr.IsLinkLocalUnicast() || isULA(addr) {
		return TagLocalV6
	}

	prefix, err := addr.Prefix(48)
	if err != nil {
		return TagUnknown
	}
	return prefix.String()
}

// isULA reports whether addr is in fc00::/7.
func isULA(addr netip.Addr) bool {
	b := addr.As16()
	return b[0]&0xfe == 0xfc
}
