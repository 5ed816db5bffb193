package model

import (
	"fmt"
	"strings"
)

// Zone is a coarse classification of an address's network scope.
type Zone uint8

const (
	// ZoneDesktop is the default, local-network zone.
	ZoneDesktop Zone = iota
	ZoneBroadcast
	ZoneInternet
	ZoneOther
)

var zoneNames = [...]string{
	ZoneDesktop:   "desktop",
	ZoneBroadcast: "broadcast",
	ZoneInternet:  "internet",
	ZoneOther:     "other",
}

func (z Zone) String() string {
	if int(z) < len(zoneNames) {
		return zoneNames[z]
	}
	return fmt.Sprintf("zone(%d)", uint8(z))
}

// MarshalText renders the zone in its lower-case wire form.
func (z Zone) MarshalText() ([]byte, error) {
	if int(z) >= len(zoneNames) {
		return nil, fmt.Errorf("unknown zone value %d", uint8(z))
	}
	return []byte(zoneNames[z]), nil
}

// UnmarshalText parses the wire form produced by MarshalText.
func (z *Zone) UnmarshalText(text []byte) error {
	zone, err := ParseZone(string(text))
	if err != nil {
		return err
	}
	*z = zone
	return nil
}

// ParseZone maps a zone name back to its value. Matching is case-insensitive.
func ParseZone(name string) (Zone, error) {
	for i, n := range zoneNames {
		if strings.EqualFold(n, name) {
			return Zone(i), nil
		}
	}
	return ZoneDesktop, fmt.Errorf("unknown zone: %q", name)
}

// FlowRecord is an aggregated summary of repeated communication between one
// ordered endpoint-address pair. Field order is the serialized order.
type FlowRecord struct {
	Src            string   `json:"src"`
	SrcZone        Zone     `json:"src_zone"`
	Dst            string   `json:"dst"`
	DstZone        Zone     `json:"dst_zone"`
	ProtocolLabels []string `json:"protocol_labels"`
	Count          uint64   `json:"count"`
}

// FlowKey identifies a flow record inside a store.
type FlowKey struct {
	Src     string
	SrcZone Zone
	Dst     string
	DstZone Zone
}

// Key returns the merge key of the record.
func (r *FlowRecord) Key() FlowKey {
	return FlowKey{Src: r.Src, SrcZone: r.SrcZone, Dst: r.Dst, DstZone: r.DstZone}
}

// Mode selects where frames come from. It is fixed for the process lifetime.
type Mode uint8

const (
	ModeLive Mode = iota
	ModeReplay
)

func (m Mode) String() string {
	if m == ModeReplay {
		return "replay"
	}
	return "live"
}
