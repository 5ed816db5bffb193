// Package capture opens frame sources for the pipeline.
package capture

import (
	"errors"
	"fmt"
	"time"

	"NetZoneFlow/internal/config"
	pcapfile "NetZoneFlow/pkg/pcap"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// ErrInterfaceNotFound is returned when the requested capture interface does
// not exist on the host.
var ErrInterfaceNotFound = errors.New("interface not found")

// Source yields raw frames together with their link type.
type Source interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
	Close() error
}

// Options configure a live capture handle.
type Options struct {
	Snaplen     int32
	Promiscuous bool
	Timeout     time.Duration
}

// DefaultOptions match the values the client has always used.
var DefaultOptions = Options{Snaplen: 1600, Promiscuous: true, Timeout: time.Second}

// OptionsFromConfig converts the capture section of the configuration.
func OptionsFromConfig(cfg config.CaptureConfig) Options {
	return Options{
		Snaplen:     int32(cfg.Snaplen),
		Promiscuous: cfg.Promiscuous,
		Timeout:     cfg.Timeout,
	}
}

// Swapped in tests.
var (
	findAllDevs = pcap.FindAllDevs
	openLive    = pcap.OpenLive
)

type liveSource struct {
	*pcap.Handle
}

func (s liveSource) Close() error {
	s.Handle.Close()
	return nil
}

// OpenLive checks that name is a known interface and opens it for capture.
// Nothing is read before the check passes.
func OpenLive(name string, opts Options) (Source, error) {
	if err := lookupInterface(name); err != nil {
		return nil, err
	}

	handle, err := openLive(name, opts.Snaplen, opts.Promiscuous, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("open interface %q: %w", name, err)
	}
	return liveSource{Handle: handle}, nil
}

func lookupInterface(name string) error {
	devs, err := findAllDevs()
	if err != nil {
		return fmt.Errorf("list interfaces: %w", err)
	}
	for _, d := range devs {
		if d.Name == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInterfaceNotFound, name)
}

// OpenFile opens a recorded capture for replay.
func OpenFile(path string) (Source, error) {
	r, err := pcapfile.NewReader(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Interfaces lists the names of the capture interfaces on the host.
func Interfaces() ([]string, error) {
	devs, err := findAllDevs()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(devs))
	for _, d := range devs {
		names = append(names, d.Name)
	}
	return names, nil
}
