package trends

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-trends/internal/pipeline"
	"github.com/saadjs/kcal-trends/internal/service"
)

var (
	compareRange string
	compareJSON  bool
)

type compareRow struct {
	Metric     service.Metric           `json:"metric"`
	Unit       string                   `json:"unit"`
	Comparison service.ComparisonResult `json:"comparison"`
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare every metric against the previous period",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := service.ParseRangeKey(compareRange)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p := newPipeline(sqldb, nil)
			rows := make([]compareRow, 0, len(service.Metrics))
			var last *pipeline.Snapshot
			for _, m := range service.Metrics {
				snap, _, err := p.Run(cmd.Context(), pipeline.Request{Range: key, Metric: m})
				if err != nil {
					return err
				}
				last = snap
				rows = append(rows, compareRow{Metric: m, Unit: m.Unit(), Comparison: snap.Report.Comparison})
			}
			if compareJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			out := cmd.OutOrStdout()
			r := last.Report
			if last.Unavailable {
				fmt.Fprintln(out, "Log sources unavailable; showing an empty period")
			}
			fmt.Fprintf(out, "Range: %s to %s vs %s to %s\n", r.Range.FromDate(), r.Range.ToDate(), r.PreviousRange.FromDate(), r.PreviousRange.ToDate())
			fmt.Fprintln(out, "METRIC\tCURRENT\tPREVIOUS\tCHANGE\tPCT")
			for _, row := range rows {
				c := row.Comparison
				if c.PreviousTotal == nil || c.DeltaPct == nil {
					fmt.Fprintf(out, "%s\t%.1f\t-\t-\t-\n", row.Metric, c.CurrentTotal)
					continue
				}
				fmt.Fprintf(out, "%s\t%.1f\t%.1f\t%+.1f\t%+.1f%%\n", row.Metric, c.CurrentTotal, *c.PreviousTotal, *c.AbsDelta, *c.DeltaPct)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVar(&compareRange, "range", "this-week", "Period: this-week|last-week|30d|90d")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Output JSON")
}
