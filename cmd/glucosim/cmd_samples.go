package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/spf13/cobra"
)

// parseTimeFlag reads an RFC 3339 flag. An empty flag yields nil.
func parseTimeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected RFC 3339 time", name, raw)
	}
	return &t, nil
}

func newSamplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Query glucose samples as a dosing loop would",
		Long: `Query glucose samples through the store's sample query.

The mock store answers every query with the single latest sample; --start
and --end are accepted for parity with a real store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimeFlag(cmd, "start")
			if err != nil {
				return err
			}
			end, err := parseTimeFlag(cmd, "end")
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, st *mockstore.GlucoseStore) error {
				samples, err := st.GetGlucoseSamples(ctx, start, end)
				if err != nil {
					return fmt.Errorf("failed to get glucose samples: %w", err)
				}

				out := cmd.OutOrStdout()
				if jsonOutput(cmd) {
					items := make([]sampleJSON, 0, len(samples))
					for _, s := range samples {
						items = append(items, toSampleJSON(s))
					}
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"scenario": st.Scenario().String(),
						"samples":  items,
						"count":    len(items),
					})
				}
				for _, s := range samples {
					fmt.Fprintf(out, "%s  %s  %s\n", s.StartDate.Format(time.RFC3339), s.Quantity, s.ProvenanceIdentifier)
				}
				return nil
			})
		},
	}

	cmd.Flags().String("start", "", "Window start (RFC 3339)")
	cmd.Flags().String("end", "", "Window end (RFC 3339)")
	return cmd
}
