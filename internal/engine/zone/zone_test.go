package zone

import (
	"net/netip"
	"testing"

	"NetZoneFlow/internal/model"

	"github.com/stretchr/testify/assert"
)

func ep(s string) Endpoint {
	addr := netip.MustParseAddr(s)
	return Endpoint{Addr: addr, FromIPv4: addr.Is4()}
}

func TestDefaultResolver(t *testing.T) {
	r := Default()

	tests := []struct {
		name string
		e    Endpoint
		want model.Zone
	}{
		{"private", ep("10.0.0.1"), model.ZoneDesktop},
		{"private 192.168", ep("192.168.1.10"), model.ZoneDesktop},
		{"loopback", ep("127.0.0.1"), model.ZoneDesktop},
		{"link-local v6", ep("fe80::1"), model.ZoneDesktop},
		{"ula", ep("fd00::1"), model.ZoneDesktop},
		{"cgnat", ep("100.64.1.1"), model.ZoneDesktop},
		{"global v4", ep("8.8.8.8"), model.ZoneInternet},
		{"global v6", ep("2606:4700:4700::1111"), model.ZoneInternet},
		{"multicast v4", ep("239.255.255.250"), model.ZoneBroadcast},
		{"multicast v6", ep("ff02::1"), model.ZoneBroadcast},
		{"limited broadcast", ep("255.255.255.255"), model.ZoneBroadcast},
		{"unspecified v4", ep("0.0.0.0"), model.ZoneBroadcast},
		{"unspecified v6", ep("::"), model.ZoneBroadcast},
		{"documentation v4", ep("203.0.113.7"), model.ZoneOther},
		{"documentation v6", ep("2001:db8::1"), model.ZoneOther},
		{"invalid address", Endpoint{}, model.ZoneDesktop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.e))
		})
	}
}

func TestLimitedBroadcastNeedsIPv4Origin(t *testing.T) {
	addr := netip.MustParseAddr("255.255.255.255")

	assert.True(t, IsLimitedBroadcast(Endpoint{Addr: addr, FromIPv4: true}))
	assert.False(t, IsLimitedBroadcast(Endpoint{Addr: addr, FromIPv4: false}))
	// 240.0.0.0/4 is reserved, so without the IPv4 origin nothing fires.
	assert.Equal(t, model.ZoneDesktop, Default().Resolve(Endpoint{Addr: addr}))
}

func TestGlobalExceptions(t *testing.T) {
	assert.True(t, IsGlobalUnicast(ep("192.0.0.9")))
	assert.False(t, IsGlobalUnicast(ep("192.0.0.8")))
	assert.True(t, IsGlobalUnicast(ep("2001:20::1")))
	assert.False(t, IsGlobalUnicast(ep("2001:2::1")))
	assert.False(t, IsGlobalUnicast(ep("::ffff:8.8.8.8")))
}

// Synthetic predicates let each rule fire alone or in combination, which real
// addresses cannot always do.
func syntheticRules(fired map[string]bool) []Rule {
	rules := DefaultRules()
	for i := range rules {
		name := rules[i].Name
		rules[i].Match = func(Endpoint) bool { return fired[name] }
	}
	return rules
}

func TestRulePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		fired []string
		want  model.Zone
	}{
		{"none", nil, model.ZoneDesktop},
		{"multicast only", []string{"multicast"}, model.ZoneBroadcast},
		{"global only", []string{"global"}, model.ZoneInternet},
		{"unspecified only", []string{"unspecified"}, model.ZoneBroadcast},
		{"documentation only", []string{"documentation"}, model.ZoneOther},
		{"broadcast only", []string{"broadcast"}, model.ZoneBroadcast},
		{"unspecified and documentation", []string{"unspecified", "documentation"}, model.ZoneOther},
		{"multicast and global", []string{"multicast", "global"}, model.ZoneInternet},
		{"global and unspecified", []string{"global", "unspecified"}, model.ZoneBroadcast},
		{"all", []string{"broadcast", "multicast", "global", "unspecified", "documentation"}, model.ZoneOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired := make(map[string]bool)
			for _, f := range tt.fired {
				fired[f] = true
			}
			r := NewResolver(syntheticRules(fired)...)
			assert.Equal(t, tt.want, r.Resolve(Endpoint{}))
		})
	}
}

func TestDefaultRuleOrder(t *testing.T) {
	var names []string
	for _, r := range Default().Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"broadcast", "multicast", "global", "unspecified", "documentation"}, names)
}
