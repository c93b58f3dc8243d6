package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nvandessel/glucosim/internal/mcp"
	"github.com/nvandessel/glucosim/internal/metrics"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the mock glucose store over MCP (stdio)",
		Long: `Run an MCP server on stdin/stdout exposing the mock glucose store as tools:

  glucosim_scenarios      list scenarios
  glucosim_latest         latest glucose sample
  glucosim_momentum       recent momentum effect
  glucosim_counteraction  counteraction effects for a window

With metrics enabled (metrics.enabled or --metrics-addr), resolution counts
and latencies are served in prometheus format at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.closer.Close()

			scn, err := rt.scenario(cmd)
			if err != nil {
				return err
			}

			addr, _ := cmd.Flags().GetString("metrics-addr")
			if addr == "" && rt.cfg.Metrics.Enabled {
				addr = rt.cfg.Metrics.Addr
			}

			ctx := cmdContext(cmd)
			if addr != "" {
				prom := metrics.NewPrometheus()
				rt.metrics = prom
				stop := serveMetrics(addr, prom, rt.logger.Error)
				defer stop()
				rt.logger.Info("serving metrics", "addr", addr)
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:      "glucosim",
				Version:   version,
				Loader:    rt.loader,
				Scenario:  scn,
				Logger:    rt.logger,
				Decisions: rt.decisions,
				Metrics:   rt.metrics,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			rt.logger.Info("mcp server starting", "scenario", scn.String(), "driver", string(rt.loader.Driver()))
			return server.Run(ctx)
		},
	}

	cmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9464)")
	return cmd
}

// serveMetrics starts a /metrics listener and returns a func that shuts it down.
func serveMetrics(addr string, prom *metrics.Prometheus, logErr func(msg string, args ...any)) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logErr("metrics listener failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
