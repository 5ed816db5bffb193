package zone

import "net/netip"

var limitedBroadcast = netip.AddrFrom4([4]byte{255, 255, 255, 255})

var documentationPrefixes = mustPrefixes(
	"192.0.2.0/24",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"2001:db8::/32",
	"3fff::/20",
)

// Special-purpose ranges (IANA registries) that are not globally routable.
var nonGlobalPrefixes = mustPrefixes(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"240.0.0.0/4",
	"::/128",
	"::1/128",
	"::ffff:0:0/96",
	"64:ff9b:1::/48",
	"100::/64",
	"2001::/23",
	"2001:db8::/32",
	"2002::/16",
	"3fff::/20",
	"5f00::/16",
	"fc00::/7",
	"fe80::/10",
)

// Globally reachable allocations carved out of the ranges above.
var globalExceptions = mustPrefixes(
	"192.0.0.9/32",
	"192.0.0.10/32",
	"2001:1::1/128",
	"2001:1::2/128",
	"2001:3::/32",
	"2001:4:112::/48",
	"2001:20::/28",
	"2001:30::/28",
)

func mustPrefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, len(cidrs))
	for i, c := range cidrs {
		out[i] = netip.MustParsePrefix(c)
	}
	return out
}

func containedIn(addr netip.Addr, prefixes []netip.Prefix) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsLimitedBroadcast matches 255.255.255.255 read from an IPv4 header.
func IsLimitedBroadcast(e Endpoint) bool {
	return e.FromIPv4 && e.Addr == limitedBroadcast
}

// IsMulticast matches IPv4 224.0.0.0/4 and IPv6 ff00::/8.
func IsMulticast(e Endpoint) bool {
	return e.Addr.IsMulticast()
}

// IsGlobalUnicast matches unicast addresses that are routable on the public
// internet.
func IsGlobalUnicast(e Endpoint) bool {
	addr := e.Addr
	if !addr.IsValid() || addr.IsMulticast() {
		return false
	}
	if containedIn(addr, globalExceptions) {
		return true
	}
	return !containedIn(addr, nonGlobalPrefixes)
}

// IsUnspecified matches 0.0.0.0 and ::.
func IsUnspecified(e Endpoint) bool {
	return e.Addr.IsUnspecified()
}

// IsDocumentation matches the ranges reserved for examples and documentation.
func IsDocumentation(e Endpoint) bool {
	return containedIn(e.Addr, documentationPrefixes)
}
