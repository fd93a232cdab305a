package trends

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local trends database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized kcal-trends database at %s\n", cfg.DBPath)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
