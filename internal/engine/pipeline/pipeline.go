// Package pipeline drives frames through classification, aggregation and
// upload.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"NetZoneFlow/internal/dissect"
	"NetZoneFlow/internal/engine/flowaggregator"
	"NetZoneFlow/internal/engine/protocol"
	"NetZoneFlow/internal/engine/uploader"
	"NetZoneFlow/internal/engine/zone"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/metrics"
	"NetZoneFlow/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Source is the frame source consumed by Run.
type Source interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Pipeline is the single owner of the flow store, the uploader and the zone
// resolver. It must be driven from one goroutine.
type Pipeline struct {
	mode      model.Mode
	dissector dissect.Dissector
	resolver  *zone.Resolver
	store     *flowaggregator.Store
	uploader  *uploader.Uploader
	diag      io.Writer
}

type Option func(*Pipeline)

func WithDissector(d dissect.Dissector) Option {
	return func(p *Pipeline) { p.dissector = d }
}

func WithResolver(r *zone.Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithDiagnostics redirects the unrecognized-layer lines, stdout by default.
func WithDiagnostics(w io.Writer) Option {
	return func(p *Pipeline) { p.diag = w }
}

// New creates a pipeline reading in mode and flushing through up.
func New(up *uploader.Uploader, mode model.Mode, opts ...Option) *Pipeline {
	p := &Pipeline{
		mode:      mode,
		dissector: dissect.NewGoPacket(),
		resolver:  zone.Default(),
		store:     flowaggregator.NewStore(),
		uploader:  up,
		diag:      os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one frame. The returned error is always a flush error.
func (p *Pipeline) Process(ctx context.Context, data []byte, linkType layers.LinkType) error {
	res := protocol.Classify(p.dissector.Dissect(data, linkType))

	for _, detail := range res.Unrecognized {
		fmt.Fprintln(p.diag, detail)
		metrics.UnrecognizedLayersTotal.Inc()
	}

	srcZone := p.resolver.Resolve(zone.Endpoint{Addr: res.Src, FromIPv4: res.FromIPv4})
	dstZone := p.resolver.Resolve(zone.Endpoint{Addr: res.Dst, FromIPv4: res.FromIPv4})

	if res.SelfCommunication() {
		metrics.FramesTotal.WithLabelValues(p.mode.String(), metrics.OutcomeSelfTalk).Inc()
	} else {
		p.store.Add(model.FlowRecord{
			Src:            res.Src.String(),
			SrcZone:        srcZone,
			Dst:            res.Dst.String(),
			DstZone:        dstZone,
			ProtocolLabels: []string{res.Label},
			Count:          1,
		})
		metrics.FramesTotal.WithLabelValues(p.mode.String(), metrics.OutcomeStored).Inc()
		metrics.ProtocolLabelsTotal.WithLabelValues(res.Label).Inc()
		metrics.StoreSize.Set(float64(p.store.Len()))
	}

	return p.uploader.Tick(ctx, p.store)
}

// Run reads frames until the source is exhausted or a flush fails. In live
// mode read errors are transient and skipped. In replay mode any read error,
// io.EOF included, ends the stream and Run returns nil.
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	linkType := src.LinkType()
	logger := log.GetLogger().WithField("mode", p.mode.String())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, _, err := src.ReadPacketData()
		if err != nil {
			metrics.ReadErrorsTotal.WithLabelValues(p.mode.String()).Inc()
			if p.mode == model.ModeReplay {
				if !errors.Is(err, io.EOF) {
					logger.WithError(err).Warn("replay stopped on read error")
				}
				return nil
			}
			if logger.IsDebugEnabled() {
				logger.WithError(err).Debug("skipping failed read")
			}
			continue
		}

		if err := p.Process(ctx, data, linkType); err != nil {
			return err
		}
	}
}

// Flush delivers whatever the store holds right now.
func (p *Pipeline) Flush(ctx context.Context) error {
	return p.uploader.Flush(ctx, p.store)
}

// Records returns a copy of the records awaiting the next flush.
func (p *Pipeline) Records() []model.FlowRecord {
	return p.store.Records()
}
