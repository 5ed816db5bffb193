package dissect

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Dissector extracts the layer stack of one frame, outermost layer first.
type Dissector interface {
	Dissect(data []byte, linkType layers.LinkType) []Layer
}

// GoPacket is a Dissector backed by gopacket's layer decoders.
type GoPacket struct {
	options gopacket.DecodeOptions
}

// NewGoPacket creates a gopacket based dissector. Frames are decoded eagerly
// and without copying, the caller must not reuse data while the stack is in use.
func NewGoPacket() *GoPacket {
	return &GoPacket{options: gopacket.DecodeOptions{NoCopy: true}}
}

// transport remembers the innermost transport header seen so far, which the
// payload sniffers need for their port checks.
type transport struct {
	kind             Kind
	srcPort, dstPort uint16
}

func (t transport) port(p uint16) bool {
	return t.srcPort == p || t.dstPort == p
}

// Dissect decodes data and maps every gopacket layer to a Layer.
func (d *GoPacket) Dissect(data []byte, linkType layers.LinkType) []Layer {
	packet := gopacket.NewPacket(data, linkType, d.options)

	var (
		stack []Layer
		tr    transport
	)
	for _, l := range packet.Layers() {
		switch v := l.(type) {
		case *layers.Ethernet:
			stack = append(stack, Of(KindEthernet))
		case *layers.ARP:
			src, srcOK := netip.AddrFromSlice(v.SourceProtAddress)
			dst, dstOK := netip.AddrFromSlice(v.DstProtAddress)
			if srcOK && dstOK {
				stack = append(stack, Addressed(KindARP, src.Unmap(), dst.Unmap()))
			} else {
				// Non-IP ARP: the label still applies, the addresses do not.
				stack = append(stack, Of(KindARP))
			}
		case *layers.IPv4:
			stack = append(stack, Addressed(KindIPv4, ipv4Addr(v.SrcIP), ipv4Addr(v.DstIP)))
		case *layers.IPv6:
			stack = append(stack, Addressed(KindIPv6, ipv6Addr(v.SrcIP), ipv6Addr(v.DstIP)))
		case *layers.UDP:
			tr = transport{kind: KindUDP, srcPort: uint16(v.SrcPort), dstPort: uint16(v.DstPort)}
			stack = append(stack, Of(KindUDP))
		case *layers.TCP:
			tr = transport{kind: KindTCP, srcPort: uint16(v.SrcPort), dstPort: uint16(v.DstPort)}
			stack = append(stack, Of(KindTCP))
		case *gopacket.Payload:
			// Opaque application bytes are only a layer when a sniffer claims them.
			if kind, ok := sniffApplication(tr, v.LayerContents()); ok {
				stack = append(stack, Of(kind))
			}
		case *gopacket.DecodeFailure:
			if kind, ok := sniffApplication(tr, v.LayerContents()); ok {
				stack = append(stack, Of(kind))
				continue
			}
			stack = append(stack, Unrecognized(fmt.Sprintf("undecodable layer after %s: %v", tr.kind, v.Error())))
		default:
			if kind, ok := kindOf(l.LayerType()); ok {
				stack = append(stack, Of(kind))
				continue
			}
			stack = append(stack, Unrecognized(fmt.Sprintf("unrecognized layer %s (%d bytes)", l.LayerType(), len(l.LayerContents()))))
		}
	}
	return stack
}

// kindOf maps the address-less gopacket layer types onto kinds.
func kindOf(lt gopacket.LayerType) (Kind, bool) {
	switch lt {
	case layers.LayerTypeICMPv4:
		return KindICMP, true
	case layers.LayerTypeICMPv6,
		layers.LayerTypeICMPv6Echo,
		layers.LayerTypeICMPv6RouterSolicitation,
		layers.LayerTypeICMPv6RouterAdvertisement,
		layers.LayerTypeICMPv6NeighborSolicitation,
		layers.LayerTypeICMPv6NeighborAdvertisement,
		layers.LayerTypeICMPv6Redirect:
		return KindICMPv6, true
	case layers.LayerTypeEAPOL, layers.LayerTypeEAP:
		return KindEAPOL, true
	case layers.LayerTypeIGMP:
		return KindIGMP, true
	case layers.LayerTypeDHCPv4:
		return KindDHCP, true
	case layers.LayerTypeDHCPv6:
		return KindDHCPv6, true
	case layers.LayerTypeDNS:
		return KindDNS, true
	case layers.LayerTypeNTP:
		return KindNTP, true
	case layers.LayerTypeTLS:
		return KindTLS, true
	case layers.LayerTypeRADIUS:
		return KindRADIUS, true
	}
	return KindUnrecognized, false
}

func ipv4Addr(ip net.IP) netip.Addr {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.IPv4Unspecified()
	}
	return addr.Unmap()
}

func ipv6Addr(ip net.IP) netip.Addr {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.IPv6Unspecified()
	}
	return addr
}
