package trends

import (
	"database/sql"

	"github.com/spf13/cobra"
)

var (
	showRange  string
	showMetric string
	showJSON   bool
	showChart  bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show trends for a period",
	Example: `  kcal-trends show
  kcal-trends show --range 30d --metric protein --chart
  kcal-trends show --range last-week --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseRequest(showRange, showMetric)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			snap, _, err := newPipeline(sqldb, nil).Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if showJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			printSnapshot(cmd.OutOrStdout(), snap, showChart)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showRange, "range", "this-week", "Period: this-week|last-week|30d|90d")
	showCmd.Flags().StringVar(&showMetric, "metric", "calories", "Metric: calories|protein|carbs|fat")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output JSON")
	showCmd.Flags().BoolVar(&showChart, "chart", false, "Plot the metric per day")
}
