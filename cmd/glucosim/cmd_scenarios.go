package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/glucosim/internal/scenario"
	"github.com/spf13/cobra"
)

// scenarioInfo is the JSON shape of one scenario listing entry.
type scenarioInfo struct {
	Key           string     `json:"key"`
	Description   string     `json:"description"`
	LiveCapture   bool       `json:"live_capture"`
	GlucoseDate   *time.Time `json:"glucose_date,omitempty"`
	LatestValue   *float64   `json:"latest_value,omitempty"`
	Momentum      string     `json:"momentum_resource,omitempty"`
	Counteraction string     `json:"counteraction_resource,omitempty"`
	Historic      string     `json:"historic_resource"`
}

func describeScenario(s scenario.Scenario) scenarioInfo {
	info := scenarioInfo{
		Key:         s.String(),
		Description: s.Description(),
		LiveCapture: s.IsLiveCapture(),
		Historic:    s.HistoricGlucoseResource(),
	}
	if !s.IsLiveCapture() {
		d := s.GlucoseStartDate()
		v := s.LatestGlucoseValue()
		info.GlucoseDate = &d
		info.LatestValue = &v
		info.Momentum = s.MomentumEffectResource()
		info.Counteraction = s.CounteractionEffectResource()
	}
	return info
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List available scenarios",
		Long: `List every scenario with its canned constants and fixture resources.

The live capture scenario has no canned data; its effects are computed from
the historic glucose resource.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := scenario.All()
			infos := make([]scenarioInfo, 0, len(all))
			for _, s := range all {
				infos = append(infos, describeScenario(s))
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"scenarios": infos,
					"count":     len(infos),
				})
			}

			for _, info := range infos {
				if info.LiveCapture {
					fmt.Fprintf(out, "%-28s (live)  %s\n", info.Key, info.Description)
					continue
				}
				fmt.Fprintf(out, "%-28s %6.1f  %s\n", info.Key, *info.LatestValue, info.Description)
			}
			return nil
		},
	}
}
