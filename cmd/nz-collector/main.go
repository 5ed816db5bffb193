package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NetZoneFlow/internal/collector"
	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/metrics"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		listen     string
		withNATS   bool
	)
	cmd := &cobra.Command{
		Use:           "nz-collector",
		Short:         "Reference collector that merges the flow batches posted by nz-client",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			if listen != "" {
				overrides["collector.listen"] = listen
			}
			cfg, err := config.Load(configFile, overrides)
			if err != nil {
				return err
			}
			if err := log.Init(cfg.Log); err != nil {
				return err
			}
			defer log.Close()
			return serve(cfg, withNATS)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (YAML)")
	cmd.Flags().StringVar(&listen, "listen", "", "override collector.listen")
	cmd.Flags().BoolVar(&withNATS, "nats", false, "also consume batches from collector.subject on collector.nats_url")
	return cmd
}

func serve(cfg *config.Config, withNATS bool) error {
	logger := log.GetLogger()
	c := collector.New()

	if withNATS {
		sub, err := collector.NewSubscriber(cfg.Collector.NATSURL, cfg.Collector.Subject)
		if err != nil {
			return err
		}
		defer sub.Close()
		if err := sub.Start(c); err != nil {
			return err
		}
	}

	r := c.Router()
	metrics.Register(r)

	server := &http.Server{
		Addr:    cfg.Collector.Listen,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("collector listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("could not listen on %s: %w", server.Addr, err)
	case <-quit:
	}

	logger.Info("collector shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
