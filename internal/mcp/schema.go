// Package mcp provides an MCP (Model Context Protocol) server for glucosim.
package mcp

import (
	"time"
)

// ScenarioInput selects the scenario a tool call resolves against.
type ScenarioInput struct {
	Scenario string `json:"scenario,omitempty" jsonschema:"Scenario key (e.g. 'flat_and_stable'); defaults to the server's scenario"`
}

// GlucosimScenariosInput defines the input for glucosim_scenarios tool.
type GlucosimScenariosInput struct{}

// GlucosimScenariosOutput defines the output for glucosim_scenarios tool.
type GlucosimScenariosOutput struct {
	Scenarios []ScenarioSummary `json:"scenarios" jsonschema:"Every known scenario"`
	Default   string            `json:"default" jsonschema:"Scenario used when a call names none"`
	Count     int               `json:"count" jsonschema:"Number of scenarios"`
}

// ScenarioSummary describes one scenario.
type ScenarioSummary struct {
	Key         string     `json:"key"`
	Description string     `json:"description"`
	LiveCapture bool       `json:"live_capture"`
	GlucoseDate *time.Time `json:"glucose_date,omitempty"`
	LatestValue *float64   `json:"latest_value,omitempty"`
}

// GlucosimLatestInput defines the input for glucosim_latest tool.
type GlucosimLatestInput = ScenarioInput

// GlucosimLatestOutput defines the output for glucosim_latest tool.
type GlucosimLatestOutput struct {
	Scenario string       `json:"scenario" jsonschema:"Scenario the store is bound to"`
	Backing  string       `json:"backing" jsonschema:"Where data came from: 'data' or 'fixture'"`
	Sample   SampleOutput `json:"sample" jsonschema:"Latest glucose sample"`
}

// SampleOutput is a glucose sample flattened for tool output.
type SampleOutput struct {
	StartDate  time.Time `json:"start_date"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Provenance string    `json:"provenance"`
}

// GlucosimMomentumInput defines the input for glucosim_momentum tool.
type GlucosimMomentumInput = ScenarioInput

// GlucosimMomentumOutput defines the output for glucosim_momentum tool.
type GlucosimMomentumOutput struct {
	Scenario string         `json:"scenario"`
	Backing  string         `json:"backing"`
	Effects  []EffectOutput `json:"effects" jsonschema:"Projected glucose change by time"`
	Count    int            `json:"count"`
}

// EffectOutput is a glucose effect flattened for tool output.
type EffectOutput struct {
	StartDate time.Time `json:"start_date"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// GlucosimCounteractionInput defines the input for glucosim_counteraction tool.
type GlucosimCounteractionInput struct {
	Scenario string `json:"scenario,omitempty" jsonschema:"Scenario key; defaults to the server's scenario"`
	Start    string `json:"start,omitempty" jsonschema:"Window start (RFC 3339); defaults to the zero time"`
	End      string `json:"end,omitempty" jsonschema:"Window end (RFC 3339, exclusive); omit for an open window"`
}

// GlucosimCounteractionOutput defines the output for glucosim_counteraction tool.
type GlucosimCounteractionOutput struct {
	Scenario   string           `json:"scenario"`
	Backing    string           `json:"backing"`
	Velocities []VelocityOutput `json:"velocities" jsonschema:"Observed glucose change rates by interval"`
	Count      int              `json:"count"`
}

// VelocityOutput is a glucose effect velocity flattened for tool output.
type VelocityOutput struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}
