package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/spf13/cobra"
)

type velocityJSON struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

func newCounteractionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counteraction",
		Short: "Show counteraction effects for a scenario",
		Long: `Show the counteraction effects a dosing loop would read.

Fixture-backed scenarios replay their canned counteraction fixture whatever
the window. Data-backed scenarios compute none.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimeFlag(cmd, "start")
			if err != nil {
				return err
			}
			end, err := parseTimeFlag(cmd, "end")
			if err != nil {
				return err
			}
			var from time.Time
			if start != nil {
				from = *start
			}

			return withStore(cmd, func(ctx context.Context, st *mockstore.GlucoseStore) error {
				velocities, err := st.GetCounteractionEffects(ctx, from, end, nil)
				if err != nil {
					return fmt.Errorf("failed to get counteraction effects: %w", err)
				}

				out := cmd.OutOrStdout()
				if jsonOutput(cmd) {
					items := make([]velocityJSON, 0, len(velocities))
					for _, v := range velocities {
						items = append(items, velocityJSON{
							StartDate: v.StartDate,
							EndDate:   v.EndDate,
							Value:     v.Quantity.Value,
							Unit:      string(v.Quantity.Unit),
						})
					}
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"scenario":   st.Scenario().String(),
						"backing":    st.Backing().String(),
						"velocities": items,
						"count":      len(items),
					})
				}

				fmt.Fprintf(out, "Counteraction for %s (%s): %d effects\n", st.Scenario(), st.Backing(), len(velocities))
				for _, v := range velocities {
					fmt.Fprintf(out, "  %s  %-8s %s\n", v.StartDate.Format(time.RFC3339), v.Duration(), v.Quantity)
				}
				return nil
			})
		},
	}

	cmd.Flags().String("start", "", "Window start (RFC 3339, default unbounded)")
	cmd.Flags().String("end", "", "Window end, exclusive (RFC 3339, default open)")
	return cmd
}
