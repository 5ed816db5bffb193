// Package protocol resolves the protocol label and endpoints of a frame from
// its dissected layer stack.
package protocol

import (
	"net/netip"

	"NetZoneFlow/internal/dissect"
)

// UnknownLabel is reported when no recognized layer is present.
const UnknownLabel = "unknown"

// Result is the classification of one frame.
type Result struct {
	Label string
	Src   netip.Addr
	Dst   netip.Addr
	// FromIPv4 is true when Src and Dst were taken from an IPv4 layer.
	FromIPv4 bool
	// Unrecognized holds the description of every layer outside the known set.
	Unrecognized []string
}

// SelfCommunication reports whether the frame talks to itself.
func (r Result) SelfCommunication() bool {
	return r.Src == r.Dst
}

// Classify walks the stack outer to inner. Every recognized layer overwrites
// the label, and address-carrying layers overwrite the endpoints, so the
// deepest recognized layer decides both.
func Classify(stack []dissect.Layer) Result {
	res := Result{
		Label: UnknownLabel,
		Src:   netip.IPv4Unspecified(),
		Dst:   netip.IPv4Unspecified(),
	}

	for _, l := range stack {
		if !l.Recognized() {
			res.Unrecognized = append(res.Unrecognized, l.Detail)
			continue
		}
		res.Label = l.Kind.String()
		if l.CarriesAddresses() {
			res.Src, res.Dst = l.Src, l.Dst
			res.FromIPv4 = l.Kind == dissect.KindIPv4
		}
	}
	return res
}
