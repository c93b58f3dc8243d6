package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nvandessel/glucosim/internal/config"
	"github.com/nvandessel/glucosim/internal/logging"
	"github.com/nvandessel/glucosim/internal/metrics"
	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/nvandessel/glucosim/internal/resource"
	"github.com/nvandessel/glucosim/internal/scenario"
	"github.com/spf13/cobra"
)

// runtime bundles the configured collaborators a command needs.
type runtime struct {
	cfg       *config.GlucosimConfig
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	loader    resource.Loader
	closer    io.Closer
	metrics   metrics.Recorder
}

// loadConfig reads --config when given, otherwise the default locations.
func loadConfig(cmd *cobra.Command) (*config.GlucosimConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.GlucosimConfig
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openRuntime loads config and opens the fixture backend. Logs go to stderr
// so stdout stays machine readable.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	loader, closer, err := resource.Open(cmdContext(cmd), cfg.ResourceOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s fixtures: %w", cfg.Fixtures.Driver, err)
	}
	logger.Debug("fixtures opened", "fixtures", cfg.Fixtures.String())

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		decisions: logging.NewDecisionLogger(config.Dir(), cfg.Logging.Level),
		loader:    loader,
		closer:    closer,
		metrics:   metrics.Nop{},
	}, nil
}

// Close releases the fixture backend and the decision trace.
func (r *runtime) Close() error {
	r.decisions.Close()
	return r.closer.Close()
}

// scenario resolves --scenario, falling back to the configured default.
func (r *runtime) scenario(cmd *cobra.Command) (scenario.Scenario, error) {
	key, _ := cmd.Flags().GetString("scenario")
	if key == "" {
		key = r.cfg.Scenario
	}
	return scenario.Parse(key)
}

// store builds a mock store for scn on the runtime's collaborators.
func (r *runtime) store(ctx context.Context, scn scenario.Scenario, opts ...mockstore.Option) *mockstore.GlucoseStore {
	base := []mockstore.Option{
		mockstore.WithLoader(r.loader),
		mockstore.WithLogger(r.logger),
		mockstore.WithDecisionLogger(r.decisions),
		mockstore.WithMetrics(r.metrics),
	}
	return mockstore.New(ctx, scn, append(base, opts...)...)
}

// withStore opens a runtime, resolves the scenario and hands fn a store.
// Live-capture precondition panics come back as errors.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, st *mockstore.GlucoseStore) error) (retErr error) {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	scn, err := rt.scenario(cmd)
	if err != nil {
		return err
	}

	ctx := cmdContext(cmd)
	defer scenario.RecoverLiveCapture(&retErr)
	return fn(ctx, rt.store(ctx, scn))
}

func jsonOutput(cmd *cobra.Command) bool {
	jsonOut, _ := cmd.Flags().GetBool("json")
	return jsonOut
}

// cmdContext returns the command's context, or Background when run directly.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
