// Package zone maps endpoint addresses to coarse network zones.
package zone

import (
	"net/netip"

	"NetZoneFlow/internal/model"
)

// Endpoint is an address together with the layer kind it was taken from.
type Endpoint struct {
	Addr netip.Addr
	// FromIPv4 is true when Addr was read from an IPv4 network header.
	FromIPv4 bool
}

// Rule assigns Zone to every endpoint Match accepts.
type Rule struct {
	Name  string
	Match func(Endpoint) bool
	Zone  model.Zone
}

// Resolver evaluates its rules in order; every matching rule overwrites the
// result of the ones before it, so the last match wins.
type Resolver struct {
	rules []Rule
}

// NewResolver creates a resolver over rules, evaluated in the given order.
func NewResolver(rules ...Rule) *Resolver {
	return &Resolver{rules: append([]Rule(nil), rules...)}
}

// Default returns a resolver over DefaultRules.
func Default() *Resolver {
	return NewResolver(DefaultRules()...)
}

// Resolve returns the zone of e, starting from ZoneDesktop.
func (r *Resolver) Resolve(e Endpoint) model.Zone {
	z := model.ZoneDesktop
	for _, rule := range r.rules {
		if rule.Match(e) {
			z = rule.Zone
		}
	}
	return z
}

// Rules returns a copy of the rule list.
func (r *Resolver) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// DefaultRules is the fixed rule order used for classification. The order is
// significant: an unspecified documentation address ends up as ZoneOther.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "broadcast", Match: IsLimitedBroadcast, Zone: model.ZoneBroadcast},
		{Name: "multicast", Match: IsMulticast, Zone: model.ZoneBroadcast},
		{Name: "global", Match: IsGlobalUnicast, Zone: model.ZoneInternet},
		{Name: "unspecified", Match: IsUnspecified, Zone: model.ZoneBroadcast},
		{Name: "documentation", Match: IsDocumentation, Zone: model.ZoneOther},
	}
}
