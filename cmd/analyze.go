package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/wifisurvey/internal/config"
	"github.com/sells-group/wifisurvey/internal/export"
	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/pipeline"
	"github.com/sells-group/wifisurvey/internal/resilience"
	"github.com/sells-group/wifisurvey/internal/snapshot"
	"github.com/sells-group/wifisurvey/internal/source"
)

// Output formats accepted by analyze.
const (
	formatTable   = "table"
	formatJSON    = "json"
	formatGeoJSON = "geojson"
	formatXLSX    = "xlsx"
	formatText    = "text"
	formatShare   = "share"
)

var outputFormats = []string{formatTable, formatJSON, formatGeoJSON, formatXLSX, formatText, formatShare}

var (
	analyzeFormat string
	analyzeOutput string
	analyzeSeed   uint64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <batch files or directories...>",
	Short: "Analyze scan batches and print the latest snapshot",
	Long: "Runs every batch found in the given JSON, YAML, CSV or XLSX files through the pipeline " +
		"in order and renders the snapshot of the last cycle.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		if !validFormat(analyzeFormat) {
			return eris.Errorf("analyze: unknown format %q (want one of %s)",
				analyzeFormat, strings.Join(outputFormats, ", "))
		}

		seed := analyzeSeed
		if seed == 0 {
			seed = cfg.Scan.Seed
		}

		snap, err := analyze(cmd.Context(), cfg, seed, args)
		if err != nil {
			return err
		}

		out := io.Writer(os.Stdout)
		if analyzeOutput != "" {
			f, err := os.Create(analyzeOutput)
			if err != nil {
				return eris.Wrap(err, "analyze: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return render(out, snap, analyzeFormat)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", formatTable, "output format: "+strings.Join(outputFormats, ", "))
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write output to a file instead of stdout")
	analyzeCmd.Flags().Uint64Var(&analyzeSeed, "seed", 0, "seed for position fuzzing (default from config, 0 for random)")
	rootCmd.AddCommand(analyzeCmd)
}

// analyze loads batches from paths and feeds them through a fresh pipeline,
// returning the last committed snapshot.
func analyze(ctx context.Context, c *config.Config, seed uint64, paths []string) (*snapshot.Snapshot, error) {
	batches, err := source.LoadPaths(paths...)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, eris.New("analyze: no batches found")
	}

	store := snapshot.NewStore()
	pipe := pipeline.New(store, geo.NewSeededProjector(seed),
		pipeline.WithDefaultRadius(c.Scan.RadiusMeters),
	)

	poller := source.NewPoller(source.NewMemory(batches...), pipe, source.PollerOptions{
		Retry:             resilience.PolicyFromSettings(c.Retry.MaxAttempts, c.Retry.InitialBackoffMs, c.Retry.MaxBackoffMs),
		StopWhenExhausted: true,
	})
	if err := poller.Run(ctx); err != nil {
		return nil, err
	}

	snap := store.Current()
	if snap == nil {
		return nil, eris.New("analyze: no cycle committed")
	}
	return snap, nil
}

func validFormat(f string) bool {
	for _, v := range outputFormats {
		if f == v {
			return true
		}
	}
	return false
}

// render writes snap to out in the given format.
func render(out io.Writer, snap *snapshot.Snapshot, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case formatGeoJSON:
		data, err := export.GeoJSON(snap, export.GeoJSONOptions{Members: true, Observer: true})
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	case formatXLSX:
		return export.WriteXLSX(out, snap)
	case formatText:
		return export.Text(out, snap)
	case formatShare:
		return writeShare(out, snap)
	default:
		return export.Table(out, snap)
	}
}

// writeShare writes the share text of every cluster, riskiest first.
func writeShare(out io.Writer, snap *snapshot.Snapshot) error {
	for i, c := range snap.Clusters.Sorted() {
		if i > 0 {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, export.ShareText(c)); err != nil {
			return err
		}
	}
	return nil
}
