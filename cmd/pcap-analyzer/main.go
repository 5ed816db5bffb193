package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"NetZoneFlow/internal/capture"
	"NetZoneFlow/internal/engine/pipeline"
	"NetZoneFlow/internal/engine/uploader"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/model"
	"NetZoneFlow/internal/transport"
)

// pcap-analyzer replays a capture file and prints the aggregated flows as a
// single JSON batch, without contacting a collector.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: pcap-analyzer <path_to_pcap_file>")
		os.Exit(1)
	}

	if err := analyze(context.Background(), os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func analyze(ctx context.Context, path string) error {
	logger := log.GetLogger()

	src, err := capture.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open pcap file: %w", err)
	}
	defer src.Close()
	logger.Infof("Reading frames from '%s'...", path)

	// The whole file is one batch: the uploader never reaches its threshold
	// and the single flush below writes to stdout.
	up := uploader.New(transport.NewWriterSender(os.Stdout), model.ModeLive, uploader.WithThreshold(math.MaxInt))
	p := pipeline.New(up, model.ModeReplay, pipeline.WithDiagnostics(os.Stderr))

	if err := p.Run(ctx, src); err != nil {
		return err
	}
	logger.Infof("Finished reading %d frames, %d flows.", up.Frames(), len(p.Records()))
	return p.Flush(ctx)
}
