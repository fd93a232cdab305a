package trends

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	doctorJSON   bool
	doctorStrict bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report stored entries that aggregation will coerce or skip",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := newStore(sqldb).Inspect(cmd.Context(), cfg.UserID)
			if err != nil {
				return err
			}
			if doctorJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Entries: %d\n", report.Entries)
				for _, col := range []string{"calories", "protein_g", "carbs_g", "fat_g"} {
					fmt.Fprintf(out, "Non-numeric %s: %d\n", col, report.NonNumeric[col])
				}
				fmt.Fprintf(out, "Unreadable timestamps: %d\n", report.UnreadableTimes)
				fmt.Fprintf(out, "Affected entry rows: %d\n", report.AffectedEntryRows)
			}
			// Non-numeric values read as 0, so this only fails when asked to.
			if doctorStrict && report.AffectedEntryRows > 0 {
				return fmt.Errorf("doctor found %d entries with unusable values", report.AffectedEntryRows)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output JSON")
	doctorCmd.Flags().BoolVar(&doctorStrict, "strict", false, "Exit non-zero when any entry is affected")
}
