package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/nvandessel/glucosim/internal/resource"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy fixtures into a writable backend",
		Long: `Copy fixture files into a SQLite, S3 or Postgres backend.

By default the fixtures compiled into glucosim are imported. Use --from to
import JSON files from a directory instead; a file named
<scenario>_historic_glucose.json makes that scenario data backed.`,
		Example: `  glucosim import                                  # bundle -> ~/.glucosim/fixtures.db
  glucosim import --from ./captures --to postgres
  GLUCOSIM_FIXTURES_S3_BUCKET=fixtures glucosim import --to s3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var src fs.FS = resource.Bundle()
			source := "embedded bundle"
			if from != "" {
				info, err := os.Stat(from)
				if err != nil {
					return fmt.Errorf("failed to stat %s: %w", from, err)
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", from)
				}
				src = os.DirFS(from)
				source = from
			}

			opts := cfg.ResourceOptions()
			opts.Driver = resource.Driver(to)
			ctx := cmdContext(cmd)
			dst, closer, err := resource.Open(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to open %s backend: %w", to, err)
			}
			defer closer.Close()

			w, ok := dst.(resource.Writer)
			if !ok {
				return fmt.Errorf("%s backend is read-only", to)
			}

			n, err := resource.Import(ctx, w, src)
			if err != nil {
				return fmt.Errorf("import failed after %d resources: %w", n, err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"source":   source,
					"driver":   to,
					"imported": n,
				})
			}
			fmt.Fprintf(out, "Imported %d resources from %s into %s.\n", n, source, to)
			return nil
		},
	}

	cmd.Flags().String("from", "", "Directory of fixture JSON files (default: embedded bundle)")
	cmd.Flags().String("to", string(resource.DriverSQLite), "Destination driver: sqlite, s3 or postgres")
	return cmd
}
