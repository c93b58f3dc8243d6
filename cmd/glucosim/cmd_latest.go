package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/nvandessel/glucosim/internal/models"
	"github.com/spf13/cobra"
)

// sampleJSON is the CLI's JSON shape for a glucose sample.
type sampleJSON struct {
	StartDate   time.Time `json:"start_date"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Provenance  string    `json:"provenance"`
	DisplayOnly bool      `json:"display_only,omitempty"`
}

func toSampleJSON(s models.GlucoseSample) sampleJSON {
	return sampleJSON{
		StartDate:   s.StartDate,
		Value:       s.Quantity.Value,
		Unit:        string(s.Quantity.Unit),
		Provenance:  s.ProvenanceIdentifier,
		DisplayOnly: s.IsDisplayOnly,
	}
}

func newLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the latest glucose sample for a scenario",
		Example: `  glucosim latest -s high_and_rising_with_cob
  glucosim latest -s live_capture --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, st *mockstore.GlucoseStore) error {
				latest := st.LatestGlucose()

				out := cmd.OutOrStdout()
				if jsonOutput(cmd) {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"scenario": st.Scenario().String(),
						"backing":  st.Backing().String(),
						"sample":   toSampleJSON(latest),
					})
				}
				fmt.Fprintf(out, "%s  %s  (%s, %s)\n",
					latest.StartDate.Format(time.RFC3339), latest.Quantity, st.Scenario(), st.Backing())
				return nil
			})
		},
	}
}
