package trends

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-trends/internal/model"
	"github.com/saadjs/kcal-trends/internal/source"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Record log entries in the local store",
}

var (
	entryName     string
	entryCalories float64
	entryProtein  float64
	entryCarbs    float64
	entryFat      float64
	entryDate     string
	entryTime     string
)

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a log entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		consumed, err := parseDateTimeOrNow(entryDate, entryTime, cfg.Location)
		if err != nil {
			return err
		}
		if entryCalories < 0 || entryProtein < 0 || entryCarbs < 0 || entryFat < 0 {
			return fmt.Errorf("calories and macros must be >= 0")
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := newStore(sqldb).InsertEntry(cmd.Context(), cfg.UserID, model.LogEntry{
				Name:       strings.TrimSpace(entryName),
				ConsumedAt: consumed,
				Calories:   entryCalories,
				Protein:    entryProtein,
				Carbs:      entryCarbs,
				Fat:        entryFat,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d\n", id)
			return nil
		})
	},
}

var entryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import entries from a YAML or JSON export into the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logs, err := (&source.File{Path: args[0], Location: cfg.Location}).FetchLogs(cmd.Context(), cfg.UserID)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			tx, err := sqldb.BeginTx(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("begin import: %w", err)
			}
			defer tx.Rollback()

			store := newStore(sqldb)
			for _, l := range logs {
				if _, err := store.InsertEntryTx(cmd.Context(), tx, cfg.UserID, l); err != nil {
					return err
				}
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("commit import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s\n", len(logs), args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryImportCmd)

	entryAddCmd.Flags().StringVar(&entryName, "name", "", "Food name")
	entryAddCmd.Flags().Float64Var(&entryCalories, "calories", 0, "Calories (kcal)")
	entryAddCmd.Flags().Float64Var(&entryProtein, "protein", 0, "Protein grams")
	entryAddCmd.Flags().Float64Var(&entryCarbs, "carbs", 0, "Carbs grams")
	entryAddCmd.Flags().Float64Var(&entryFat, "fat", 0, "Fat grams")
	entryAddCmd.Flags().StringVar(&entryDate, "date", "", "Consumed date YYYY-MM-DD (default now)")
	entryAddCmd.Flags().StringVar(&entryTime, "time", "", "Consumed time HH:MM")
	_ = entryAddCmd.MarkFlagRequired("calories")
}
