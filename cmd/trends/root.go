package trends

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-trends/internal/config"
	"github.com/saadjs/kcal-trends/internal/logger"
)

var (
	dbPath    string
	userID    string
	tzName    string
	logLevel  string
	logFormat string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kcal-trends",
	Short: "kcal-trends summarizes calorie and macro logs over time",
	Long:  "kcal-trends buckets nutrition logs into calendar days and reports totals, averages, best and worst days, streaks, and period-over-period change.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if err := applyFlagOverrides(c); err != nil {
			return err
		}
		if err := logger.SetLevel(c.LogLevel); err != nil {
			return err
		}
		jsonLogs, err := parseLogFormat(c.LogFormat)
		if err != nil {
			return err
		}
		logger.SetOutput(os.Stderr, jsonLogs)
		cfg = c
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (env KCAL_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User whose logs are summarized (env KCAL_USER_ID)")
	rootCmd.PersistentFlags().StringVar(&tzName, "tz", "", "IANA timezone for day boundaries (env KCAL_TIMEZONE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (env KCAL_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text|json (env KCAL_LOG_FORMAT)")
}

func applyFlagOverrides(c *config.Config) error {
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if userID != "" {
		c.UserID = userID
	}
	if tzName != "" {
		loc, err := config.ParseLocation(tzName)
		if err != nil {
			return err
		}
		c.Location = loc
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
	return nil
}

func parseLogFormat(name string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("invalid log format %q (use text|json)", name)
	}
}
