package trends

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-trends/internal/model"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage the daily calorie goal used to annotate trends",
}

var (
	goalCalories float64
	goalProtein  float64
	goalCarbs    float64
	goalFat      float64
	goalDate     string
)

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set daily goals with an effective date",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := model.Goal{
			UserID:        cfg.UserID,
			Calories:      goalCalories,
			ProteinG:      goalProtein,
			CarbsG:        goalCarbs,
			FatG:          goalFat,
			EffectiveDate: goalDate,
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := newStore(sqldb).SetGoal(cmd.Context(), g); err != nil {
				return err
			}
			if g.EffectiveDate == "" {
				g.EffectiveDate = "today"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set goal effective %s\n", g.EffectiveDate)
			return nil
		})
	},
}

var currentGoalDate string

var goalCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show current goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := currentGoalDate
		if date == "" {
			date = time.Now().In(cfg.Location).Format("2006-01-02")
		}
		return withDB(func(sqldb *sql.DB) error {
			goal, err := newStore(sqldb).CurrentGoal(cmd.Context(), cfg.UserID, date)
			if err != nil {
				return err
			}
			if goal == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No goal configured")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Effective: %s\nCalories: %.0f\nProtein: %.1fg\nCarbs: %.1fg\nFat: %.1fg\n", goal.EffectiveDate, goal.Calories, goal.ProteinG, goal.CarbsG, goal.FatG)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd, goalCurrentCmd)

	goalSetCmd.Flags().Float64Var(&goalCalories, "calories", 0, "Daily calorie target")
	goalSetCmd.Flags().Float64Var(&goalProtein, "protein", 0, "Daily protein target grams")
	goalSetCmd.Flags().Float64Var(&goalCarbs, "carbs", 0, "Daily carbs target grams")
	goalSetCmd.Flags().Float64Var(&goalFat, "fat", 0, "Daily fat target grams")
	goalSetCmd.Flags().StringVar(&goalDate, "effective-date", "", "Effective date YYYY-MM-DD (default today)")
	_ = goalSetCmd.MarkFlagRequired("calories")

	goalCurrentCmd.Flags().StringVar(&currentGoalDate, "date", "", "Resolve goal at date YYYY-MM-DD (default today)")
}
