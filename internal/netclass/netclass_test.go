package netclass

import "testing"

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"private 10 block", "10.0.0.1", TagPrivate10},
		{"private 10 block far end", "10.255.255.254", TagPrivate10},
		{"private 172 block", "172.16.0.1", TagPrivate172},
		{"private 172 block upper bound", "172.31.255.1", TagPrivate172},
		{"private 192 block", "192.168.1.5", TagPrivate192},
		{"private 192 other subnet", "192.168.50.9", TagPrivate192},
		{"public v4 buckets by /24", "8.8.8.8", "8.8.8"},
		{"public v4 different /24", "8.8.4.4", "8.8.4"},
		{"public v4 near private 172", "172.32.0.1", "172.32.0"},
		{"public v4 near private 192", "192.169.1.1", "192.169.1"},
		{"host with port", "192.168.1.5:52110", TagPrivate192},
		{"v4 mapped v6", "::ffff:10.1.2.3", TagPrivate10},
		{"v6 loopback", "::1", TagLocalV6},
		{"v6 loopback with port", "[::1]:8080", TagLocalV6},
		{"v6 link local", "fe80::1c2a:ff:fe00:1", TagLocalV6},
		{"v6 ula", "fd12:3456:789a::1", TagLocalV6},
		{"v6 global buckets by /48", "2001:db8:1234:5678::1", "2001:db8:1234::/48"},
		{"empty", "", TagUnknown},
		{"garbage", "not-an-address", TagUnknown},
		{"hostname", "example.com:443", TagUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupKey(tt.address)
			if got != tt.want {
				t.Errorf("GroupKey(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestGroupKey_SamePrivateBlock(t *testing.T) {
	if GroupKey("192.168.1.5") != GroupKey("192.168.50.9") {
		t.Error("devices in the same RFC1918 block should share a group")
	}
	if GroupKey("10.0.0.1") != GroupKey("10.255.255.254") {
		t.Error("devices in the same RFC1918 block should share a group")
	}
	if GroupKey("8.8.8.8") == GroupKey("8.8.4.4") {
		t.Error("public addresses in different /24s should not share a group")
	}
}

func TestGroupKey_Deterministic(t *testing.T) {
	inputs := []string{"10.1.2.3", "8.8.8.8", "garbage", "", "2001:db8::1"}
	for _, in := range inputs {
		first := GroupKey(in)
		for i := 0; i < 3; i++ {
			if got := GroupKey(in); got != first {
				t.Errorf("GroupKey(%q) not deterministic: %q then %q", in, first, got)
			}
		}
	}
}
