package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/nvandessel/glucosim/internal/models"
	"github.com/nvandessel/glucosim/internal/scenario"
	"github.com/spf13/cobra"
)

type effectJSON struct {
	StartDate time.Time `json:"start_date"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

func toEffectsJSON(effects []models.GlucoseEffect) []effectJSON {
	items := make([]effectJSON, 0, len(effects))
	for _, e := range effects {
		items = append(items, effectJSON{StartDate: e.StartDate, Value: e.Quantity.Value, Unit: string(e.Quantity.Unit)})
	}
	return items
}

func newMomentumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "momentum",
		Short: "Show the recent momentum effect for a scenario",
		Long: `Show the momentum effect a dosing loop would read.

Fixture-backed scenarios replay their canned momentum fixture. Data-backed
scenarios fit a line through the last 15 minutes of historic glucose and
project it forward; --at moves the end of that window.`,
		Example: `  glucosim momentum -s high_and_falling
  glucosim momentum -s live_capture --at 2023-07-29T19:00:00Z --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseTimeFlag(cmd, "at")
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			scn, err := rt.scenario(cmd)
			if err != nil {
				return err
			}

			var opts []mockstore.Option
			if at != nil {
				opts = append(opts, mockstore.WithCurrentDate(*at))
			}
			ctx := cmdContext(cmd)
			return printMomentum(ctx, cmd, rt.store(ctx, scn, opts...))
		},
	}

	cmd.Flags().String("at", "", "Current date for data-backed momentum (RFC 3339)")
	return cmd
}

func printMomentum(ctx context.Context, cmd *cobra.Command, st *mockstore.GlucoseStore) (retErr error) {
	defer scenario.RecoverLiveCapture(&retErr)

	effects, err := st.GetRecentMomentumEffect(ctx)
	if err != nil {
		return fmt.Errorf("failed to get momentum effect: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"scenario": st.Scenario().String(),
			"backing":  st.Backing().String(),
			"effects":  toEffectsJSON(effects),
			"count":    len(effects),
		})
	}

	if len(effects) == 0 {
		fmt.Fprintf(out, "No momentum for %s (%s): samples too few, gapped, calibrated or mixed.\n", st.Scenario(), st.Backing())
		return nil
	}
	fmt.Fprintf(out, "Momentum for %s (%s):\n", st.Scenario(), st.Backing())
	for _, e := range effects {
		fmt.Fprintf(out, "  %s  %s\n", e.StartDate.Format(time.RFC3339), e.Quantity)
	}
	return nil
}
