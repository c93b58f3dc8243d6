package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/glucosim/internal/logging"
	"github.com/nvandessel/glucosim/internal/metrics"
	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/nvandessel/glucosim/internal/ratelimit"
	"github.com/nvandessel/glucosim/internal/resource"
	"github.com/nvandessel/glucosim/internal/scenario"
)

// Server wraps the MCP SDK server and serves mock glucose stores.
type Server struct {
	server   *sdk.Server
	loader   resource.Loader
	scenario scenario.Scenario

	logger    *slog.Logger
	decisions *logging.DecisionLogger
	metrics   metrics.Recorder
	limits    ratelimit.ToolLimiters

	mu     sync.Mutex
	stores map[scenario.Scenario]*mockstore.GlucoseStore
}

// Config holds server configuration.
type Config struct {
	Name     string            // Server name (e.g., "glucosim")
	Version  string            // Server version
	Loader   resource.Loader   // Fixture source; defaults to the embedded bundle
	Scenario scenario.Scenario // Scenario used when a call names none

	Logger    *slog.Logger
	Decisions *logging.DecisionLogger
	Metrics   metrics.Recorder

	// Limits throttles tool calls per scenario; nil uses the defaults.
	Limits ratelimit.ToolLimiters
}

// NewServer creates a new MCP server with glucosim tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil server config")
	}
	loader := cfg.Loader
	if loader == nil {
		loader = resource.NewEmbedded()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	var rec metrics.Recorder = metrics.Nop{}
	if cfg.Metrics != nil {
		rec = cfg.Metrics
	}
	limits := cfg.Limits
	if limits == nil {
		limits = ratelimit.DefaultToolLimiters()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:    mcpServer,
		loader:    loader,
		scenario:  cfg.Scenario,
		logger:    logger,
		decisions: cfg.Decisions,
		metrics:   rec,
		limits:    limits,
		stores:    make(map[scenario.Scenario]*mockstore.GlucoseStore),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Close releases the decision trace.
func (s *Server) Close() error {
	s.decisions.Close()
	return nil
}

// store returns the cached store for scn, building it on first use. The
// store outlives the call that built it, so it loads without the call's
// cancellation, and a store whose historic load failed is not cached.
func (s *Server) store(ctx context.Context, scn scenario.Scenario) *mockstore.GlucoseStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[scn]; ok {
		return st
	}
	st := mockstore.New(context.WithoutCancel(ctx), scn,
		mockstore.WithLoader(s.loader),
		mockstore.WithLogger(s.logger),
		mockstore.WithDecisionLogger(s.decisions),
		mockstore.WithMetrics(s.metrics),
	)
	if err := st.LoadErr(); err != nil {
		s.logger.Warn("historic glucose load failed, not caching store",
			"scenario", scn.String(), "error", err)
		return st
	}
	s.stores[scn] = st
	return st
}

// resolveScenario parses key, falling back to the server default.
func (s *Server) resolveScenario(key string) (scenario.Scenario, error) {
	if key == "" {
		return s.scenario, nil
	}
	return scenario.Parse(key)
}
