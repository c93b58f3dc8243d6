package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/glucosim/internal/models"
	"github.com/nvandessel/glucosim/internal/scenario"
)

// registerTools registers all glucosim MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "glucosim_scenarios",
		Description: "List the dosing test scenarios the mock glucose store can be bound to",
	}, s.handleScenarios)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "glucosim_latest",
		Description: "Get the latest glucose sample for a scenario",
	}, s.handleLatest)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "glucosim_momentum",
		Description: "Get the recent momentum effect for a scenario (computed from history or loaded from fixtures)",
	}, s.handleMomentum)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "glucosim_counteraction",
		Description: "Get counteraction effects for a scenario over a time window",
	}, s.handleCounteraction)

	return nil
}

// auditTool records a tool call in the decision trace.
func (s *Server) auditTool(tool string, start time.Time, err error, params map[string]any) {
	event := map[string]any{
		"event":       "tool_call",
		"tool":        tool,
		"duration_ms": time.Since(start).Milliseconds(),
		"status":      "success",
	}
	if err != nil {
		event["status"] = "error"
		event["error"] = err.Error()
	}
	for k, v := range params {
		event[k] = v
	}
	s.decisions.Log(event)
}

func (s *Server) handleScenarios(ctx context.Context, req *sdk.CallToolRequest, args GlucosimScenariosInput) (_ *sdk.CallToolResult, _ GlucosimScenariosOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("glucosim_scenarios", start, retErr, nil) }()

	if err := s.limits.Check("glucosim_scenarios", ""); err != nil {
		return nil, GlucosimScenariosOutput{}, err
	}

	all := scenario.All()
	summaries := make([]ScenarioSummary, 0, len(all))
	for _, scn := range all {
		summary := ScenarioSummary{
			Key:         scn.String(),
			Description: scn.Description(),
			LiveCapture: scn.IsLiveCapture(),
		}
		if !scn.IsLiveCapture() {
			date := scn.GlucoseStartDate()
			value := scn.LatestGlucoseValue()
			summary.GlucoseDate = &date
			summary.LatestValue = &value
		}
		summaries = append(summaries, summary)
	}

	return nil, GlucosimScenariosOutput{
		Scenarios: summaries,
		Default:   s.scenario.String(),
		Count:     len(summaries),
	}, nil
}

func (s *Server) handleLatest(ctx context.Context, req *sdk.CallToolRequest, args GlucosimLatestInput) (_ *sdk.CallToolResult, _ GlucosimLatestOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("glucosim_latest", start, retErr, map[string]any{"scenario": args.Scenario}) }()
	defer scenario.RecoverLiveCapture(&retErr)

	scn, err := s.resolveScenario(args.Scenario)
	if err != nil {
		return nil, GlucosimLatestOutput{}, err
	}
	if err := s.limits.Check("glucosim_latest", scn.String()); err != nil {
		return nil, GlucosimLatestOutput{}, err
	}
	st := s.store(ctx, scn)
	samples, err := st.GetGlucoseSamples(ctx, nil, nil)
	if err != nil {
		return nil, GlucosimLatestOutput{}, fmt.Errorf("failed to get glucose samples: %w", err)
	}

	latest := samples[len(samples)-1]
	return nil, GlucosimLatestOutput{
		Scenario: scn.String(),
		Backing:  st.Backing().String(),
		Sample:   sampleOutput(latest),
	}, nil
}

func (s *Server) handleMomentum(ctx context.Context, req *sdk.CallToolRequest, args GlucosimMomentumInput) (_ *sdk.CallToolResult, _ GlucosimMomentumOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("glucosim_momentum", start, retErr, map[string]any{"scenario": args.Scenario}) }()
	defer scenario.RecoverLiveCapture(&retErr)

	scn, err := s.resolveScenario(args.Scenario)
	if err != nil {
		return nil, GlucosimMomentumOutput{}, err
	}
	if err := s.limits.Check("glucosim_momentum", scn.String()); err != nil {
		return nil, GlucosimMomentumOutput{}, err
	}
	st := s.store(ctx, scn)
	effects, err := st.GetRecentMomentumEffect(ctx)
	if err != nil {
		return nil, GlucosimMomentumOutput{}, fmt.Errorf("failed to get momentum effect: %w", err)
	}

	out := make([]EffectOutput, 0, len(effects))
	for _, e := range effects {
		out = append(out, EffectOutput{StartDate: e.StartDate, Value: e.Quantity.Value, Unit: string(e.Quantity.Unit)})
	}
	return nil, GlucosimMomentumOutput{
		Scenario: scn.String(),
		Backing:  st.Backing().String(),
		Effects:  out,
		Count:    len(out),
	}, nil
}

func (s *Server) handleCounteraction(ctx context.Context, req *sdk.CallToolRequest, args GlucosimCounteractionInput) (_ *sdk.CallToolResult, _ GlucosimCounteractionOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("glucosim_counteraction", start, retErr, map[string]any{
			"scenario": args.Scenario, "start": args.Start, "end": args.End,
		})
	}()
	defer scenario.RecoverLiveCapture(&retErr)

	scn, err := s.resolveScenario(args.Scenario)
	if err != nil {
		return nil, GlucosimCounteractionOutput{}, err
	}
	if err := s.limits.Check("glucosim_counteraction", scn.String()); err != nil {
		return nil, GlucosimCounteractionOutput{}, err
	}

	var from time.Time
	if args.Start != "" {
		if from, err = time.Parse(time.RFC3339, args.Start); err != nil {
			return nil, GlucosimCounteractionOutput{}, fmt.Errorf("invalid start: %w", err)
		}
	}
	var to *time.Time
	if args.End != "" {
		end, err := time.Parse(time.RFC3339, args.End)
		if err != nil {
			return nil, GlucosimCounteractionOutput{}, fmt.Errorf("invalid end: %w", err)
		}
		to = &end
	}

	st := s.store(ctx, scn)
	velocities, err := st.GetCounteractionEffects(ctx, from, to, nil)
	if err != nil {
		return nil, GlucosimCounteractionOutput{}, fmt.Errorf("failed to get counteraction effects: %w", err)
	}

	out := make([]VelocityOutput, 0, len(velocities))
	for _, v := range velocities {
		out = append(out, VelocityOutput{
			StartDate: v.StartDate,
			EndDate:   v.EndDate,
			Value:     v.Quantity.Value,
			Unit:      string(v.Quantity.Unit),
		})
	}
	return nil, GlucosimCounteractionOutput{
		Scenario:   scn.String(),
		Backing:    st.Backing().String(),
		Velocities: out,
		Count:      len(out),
	}, nil
}

func sampleOutput(s models.GlucoseSample) SampleOutput {
	return SampleOutput{
		StartDate:  s.StartDate,
		Value:      s.Quantity.Value,
		Unit:       string(s.Quantity.Unit),
		Provenance: s.ProvenanceIdentifier,
	}
}
