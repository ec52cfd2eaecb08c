package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/courier"
	"github.com/dmitrymomot/courier/internal/server"
	"github.com/dmitrymomot/courier/pkg/logger"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process email jobs and serve the ops endpoints",
		Long: `Starts the email processor on the configured queue and an HTTP server
with /healthz, /readyz and /metrics. In dev mode the server also mounts the
mailbox that lists the emails written by the file transport.

The worker stops on SIGINT or SIGTERM, draining the queue before it closes
its connections.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runWorker(cmd.Context(), cfg)
		},
	}
}

func runWorker(ctx context.Context, cfg appConfig) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	res, err := connect(ctx, cfg.Courier, log)
	if err != nil {
		return errors.Join(err, logger.Shutdown()(ctx))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := append(res.options(),
		courier.WithLogger(log),
		courier.WithMetrics(reg),
	)
	c, err := courier.New(cfg.Courier, opts...)
	if err != nil {
		return errors.Join(err, res.close(ctx), logger.Shutdown()(ctx))
	}

	srvOpts := []server.Option{
		server.WithLogger(log),
		server.WithMetrics(reg),
		server.WithStartupHook(c.Start),
		server.WithShutdownHook(c.Stop),
		server.WithShutdownHook(res.close),
		server.WithShutdownHook(logger.Shutdown()),
	}
	for name, check := range c.Checks() {
		srvOpts = append(srvOpts, server.WithReadinessCheck(name, check))
	}
	if cfg.Courier.DevMode {
		mb, err := c.Mailbox()
		if err != nil {
			return errors.Join(err, res.close(ctx), logger.Shutdown()(ctx))
		}
		srvOpts = append(srvOpts, server.WithMount(mb.Route(), mb.Routes()))
		log.Info("dev mailbox enabled", slog.String("route", mb.Route()))
	}

	return server.New(cfg.Server, srvOpts...).Run(ctx)
}
