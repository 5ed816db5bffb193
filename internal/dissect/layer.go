// Package dissect turns raw frames into an ordered stack of typed layers.
package dissect

import (
	"fmt"
	"net/netip"
)

// Kind identifies a recognized protocol layer.
type Kind uint8

const (
	KindUnrecognized Kind = iota
	KindEthernet
	KindARP
	KindIPv4
	KindIPv6
	KindICMP
	KindICMPv6
	KindEAPOL
	KindUDP
	KindTCP
	KindIGMP
	KindDHCP
	KindDHCPv6
	KindDNS
	KindHTTP
	KindNTP
	KindSSDP
	KindTLS
	KindNATPMP
	KindRADIUS
)

var kindLabels = [...]string{
	KindUnrecognized: "unrecognized",
	KindEthernet:     "Ethernet",
	KindARP:          "Arp",
	KindIPv4:         "IPv4",
	KindIPv6:         "IPv6",
	KindICMP:         "ICMP",
	KindICMPv6:       "ICMPv6",
	KindEAPOL:        "EAPOL",
	KindUDP:          "UDP",
	KindTCP:          "TCP",
	KindIGMP:         "IGMP",
	KindDHCP:         "DHCP",
	KindDHCPv6:       "DHCPv6",
	KindDNS:          "DNS",
	KindHTTP:         "HTTP",
	KindNTP:          "NTP",
	KindSSDP:         "SSDP",
	KindTLS:          "TLS",
	KindNATPMP:       "NAT-PMP",
	KindRADIUS:       "RADIUS",
}

// String returns the canonical protocol label of the kind.
func (k Kind) String() string {
	if int(k) < len(kindLabels) {
		return kindLabels[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Layer is one entry of a layer stack. Src and Dst are only meaningful for
// KindARP, KindIPv4 and KindIPv6; Detail only for KindUnrecognized.
type Layer struct {
	Kind   Kind
	Src    netip.Addr
	Dst    netip.Addr
	Detail string
}

// Recognized reports whether the layer belongs to the closed set of known kinds.
func (l Layer) Recognized() bool {
	return l.Kind != KindUnrecognized
}

// CarriesAddresses reports whether the layer holds endpoint addresses.
func (l Layer) CarriesAddresses() bool {
	switch l.Kind {
	case KindARP, KindIPv4, KindIPv6:
		return true
	}
	return false
}

// Of builds a recognized layer that carries no addresses.
func Of(kind Kind) Layer {
	return Layer{Kind: kind}
}

// Addressed builds a recognized layer carrying endpoint addresses.
func Addressed(kind Kind, src, dst netip.Addr) Layer {
	return Layer{Kind: kind, Src: src, Dst: dst}
}

// Unrecognized builds the catch-all layer with a diagnostic description.
func Unrecognized(detail string) Layer {
	return Layer{Kind: KindUnrecognized, Detail: detail}
}
