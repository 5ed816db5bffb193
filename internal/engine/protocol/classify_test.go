package protocol

import (
	"net/netip"
	"testing"

	"NetZoneFlow/internal/dissect"

	"github.com/stretchr/testify/assert"
)

var (
	hostA = netip.MustParseAddr("10.0.0.1")
	hostB = netip.MustParseAddr("8.8.8.8")
)

func TestClassify_Defaults(t *testing.T) {
	res := Classify(nil)

	assert.Equal(t, UnknownLabel, res.Label)
	assert.Equal(t, netip.IPv4Unspecified(), res.Src)
	assert.Equal(t, netip.IPv4Unspecified(), res.Dst)
	assert.True(t, res.SelfCommunication())
	assert.Empty(t, res.Unrecognized)
}

func TestClassify_DeepestLayerWins(t *testing.T) {
	stack := []dissect.Layer{
		dissect.Of(dissect.KindEthernet),
		dissect.Addressed(dissect.KindIPv4, hostA, hostB),
		dissect.Of(dissect.KindUDP),
		dissect.Of(dissect.KindDNS),
	}

	res := Classify(stack)

	assert.Equal(t, "DNS", res.Label)
	assert.Equal(t, hostA, res.Src)
	assert.Equal(t, hostB, res.Dst)
	assert.True(t, res.FromIPv4)
	assert.False(t, res.SelfCommunication())
}

func TestClassify_TransportOnly(t *testing.T) {
	stack := []dissect.Layer{
		dissect.Of(dissect.KindEthernet),
		dissect.Addressed(dissect.KindIPv4, hostA, hostB),
		dissect.Of(dissect.KindTCP),
	}

	assert.Equal(t, "TCP", Classify(stack).Label)
}

func TestClassify_InnerNetworkLayerOverwritesAddresses(t *testing.T) {
	inner := netip.MustParseAddr("2001:db8::1")
	innerDst := netip.MustParseAddr("2001:db8::2")
	stack := []dissect.Layer{
		dissect.Addressed(dissect.KindIPv4, hostA, hostB),
		dissect.Addressed(dissect.KindIPv6, inner, innerDst),
		dissect.Of(dissect.KindICMPv6),
	}

	res := Classify(stack)

	assert.Equal(t, "ICMPv6", res.Label)
	assert.Equal(t, inner, res.Src)
	assert.Equal(t, innerDst, res.Dst)
	assert.False(t, res.FromIPv4)
}

func TestClassify_ARP(t *testing.T) {
	gw := netip.MustParseAddr("192.168.1.1")
	me := netip.MustParseAddr("192.168.1.10")
	res := Classify([]dissect.Layer{
		dissect.Of(dissect.KindEthernet),
		dissect.Addressed(dissect.KindARP, me, gw),
	})

	assert.Equal(t, "Arp", res.Label)
	assert.Equal(t, me, res.Src)
	assert.Equal(t, gw, res.Dst)
	assert.False(t, res.FromIPv4)
}

func TestClassify_UnrecognizedLayersDoNotChangeResult(t *testing.T) {
	stack := []dissect.Layer{
		dissect.Of(dissect.KindEthernet),
		dissect.Unrecognized("unrecognized layer Dot1Q (4 bytes)"),
		dissect.Addressed(dissect.KindIPv4, hostA, hostB),
		dissect.Of(dissect.KindUDP),
		dissect.Unrecognized("unrecognized layer SIP (120 bytes)"),
	}

	res := Classify(stack)

	assert.Equal(t, "UDP", res.Label)
	assert.Equal(t, hostA, res.Src)
	assert.Equal(t, []string{"unrecognized layer Dot1Q (4 bytes)", "unrecognized layer SIP (120 bytes)"}, res.Unrecognized)
}

func TestClassify_OnlyUnrecognized(t *testing.T) {
	res := Classify([]dissect.Layer{dissect.Unrecognized("mystery")})

	assert.Equal(t, UnknownLabel, res.Label)
	assert.True(t, res.SelfCommunication())
	assert.Len(t, res.Unrecognized, 1)
}
