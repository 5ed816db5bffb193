package main

import (
	"context"
	"errors"
	"fmt"

	"NetZoneFlow/internal/capture"
	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/engine/flowaggregator"
	"NetZoneFlow/internal/engine/pipeline"
	"NetZoneFlow/internal/engine/uploader"
	"NetZoneFlow/internal/factory"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/metrics"
	"NetZoneFlow/internal/model"

	"github.com/spf13/cobra"
)

const usageText = `Usage: nz-client <interface>
       nz-client --file <file.pcap>`

var errUsage = errors.New("invalid arguments")

type options struct {
	file        string
	configFile  string
	collector   string
	printConfig bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "nz-client <interface> | --file <file.pcap>",
		Short: "Classify network frames by protocol and zone and ship flow batches to a collector",
		Long: `nz-client captures frames from a live interface or replays a pcap file,
labels each frame with its innermost recognized protocol, assigns both
endpoints to a network zone (desktop, broadcast, internet, other) and
aggregates the result into flow records that are posted to a collector.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.file, "file", "", "replay frames from a pcap or pcapng file")
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file path (YAML)")
	flags.StringVar(&opts.collector, "collector", "", "override collector.url")
	flags.BoolVar(&opts.printConfig, "print-config", false, "print the effective configuration and exit")
	return cmd
}

// frameSource is what the command line asked to read.
type frameSource struct {
	mode   model.Mode
	target string
}

// resolveSource accepts exactly one of an interface argument and --file.
func resolveSource(args []string, file string) (frameSource, error) {
	switch {
	case len(args) > 1:
		return frameSource{}, errUsage
	case len(args) == 1 && file != "":
		return frameSource{}, errUsage
	case len(args) == 1:
		return frameSource{mode: model.ModeLive, target: args[0]}, nil
	case file != "":
		return frameSource{mode: model.ModeReplay, target: file}, nil
	default:
		return frameSource{}, errUsage
	}
}

func loadConfig(opts *options) (*config.Config, error) {
	overrides := map[string]any{}
	if opts.collector != "" {
		overrides["collector.url"] = opts.collector
	}
	return config.Load(opts.configFile, overrides)
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	if opts.printConfig {
		cfg, err := loadConfig(opts)
		if err != nil {
			return err
		}
		out, err := cfg.Dump()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	src, err := resolveSource(args, opts.file)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	return runCapture(cmd.Context(), cfg, src)
}

func runCapture(ctx context.Context, cfg *config.Config, fs frameSource) error {
	logger := log.GetLogger().WithField("mode", fs.mode.String())

	var (
		src capture.Source
		err error
	)
	if fs.mode == model.ModeLive {
		src, err = capture.OpenLive(fs.target, capture.OptionsFromConfig(cfg.Capture))
	} else {
		src, err = capture.OpenFile(fs.target)
	}
	if err != nil {
		return err
	}
	defer src.Close()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
	}

	sender, err := factory.Create(cfg.Collector)
	if err != nil {
		return err
	}
	defer sender.Close()

	codec, err := flowaggregator.CodecByName(cfg.Collector.Codec)
	if err != nil {
		return err
	}

	up := uploader.New(sender, fs.mode,
		uploader.WithCodec(codec),
		uploader.WithThreshold(cfg.Flush.BatchFrames),
		uploader.WithPolicy(uploader.PolicyFromConfig(cfg.Flush)),
	)
	p := pipeline.New(up, fs.mode)

	logger.WithFields(map[string]interface{}{
		"source": fs.target,
		"sender": sender.Name(),
		"codec":  codec.Name(),
	}).Info("reading frames")

	if err := p.Run(ctx, src); err != nil {
		return err
	}
	logger.Info("replay finished")
	return nil
}
