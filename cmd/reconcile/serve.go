package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/telemetry"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/middleware"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/scenario"
	"github.com/vango-dev/reconcile/pkg/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <scenario.yaml>",
		Short: "Stream a scenario to browsers",
		Long: `Serve a scenario over HTTP. Every WebSocket client on /ws gets its
own playback, streamed as mutation frames. The page on / is rendered
with the first tree, /snapshots returns the virtual-clock playback as
JSON and metrics are served on the configured path.

Examples:
  reconcile serve fade.yaml
  reconcile serve fade.yaml --addr 0.0.0.0:8080 --frame-interval 8ms
  reconcile serve fade.yaml --trace-exporter stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			tracer, err := telemetry.New(telemetry.Config{
				Exporter:    cfg.Trace.Exporter,
				SampleRatio: cfg.Trace.SampleRatio,
				Output:      cmd.OutOrStdout(),
				Version:     version,
			})
			if err != nil {
				return err
			}
			defer tracer.Shutdown(context.Background())

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))

			opts := append(playerOptions(cfg, logger),
				scenario.WithEngineOptions(patch.WithTracer(tracer.Tracer(patch.DefaultTracerName))),
			)
			srv := server.New(f, &server.Config{
				Address:         cfg.Server.Addr,
				FrameInterval:   cfg.Server.FrameInterval,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				MetricsPath:     cfg.Metrics.Path,
			},
				server.WithLogger(logger.With("component", "server")),
				server.WithMetrics(collector, reg),
				server.WithPlayerOptions(opts...),
				server.WithMiddleware(
					middleware.OpenTelemetry(middleware.WithTracerProvider(tracer.Provider())),
					middleware.Prometheus(
						middleware.WithRegistry(reg),
						middleware.WithNamespace(cfg.Metrics.Namespace),
						middleware.WithSkip(cfg.Metrics.Path),
					),
				),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Address to listen on (default 127.0.0.1:8080)")
	cmd.Flags().Duration("frame-interval", 0, "Frame period of the session loops (default 16ms)")
	cmd.Flags().String("metrics-namespace", "", "Prometheus metrics namespace")
	cmd.Flags().String("trace-exporter", "", "Span exporter: none or stdout")

	return cmd
}
