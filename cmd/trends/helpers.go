package trends

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saadjs/kcal-trends/internal/app"
	"github.com/saadjs/kcal-trends/internal/db"
	"github.com/saadjs/kcal-trends/internal/pipeline"
	"github.com/saadjs/kcal-trends/internal/service"
	"github.com/saadjs/kcal-trends/internal/source"
)

func withDB(run func(*sql.DB) error) error {
	path := cfg.DBPath
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(sqldb)
}

func newStore(sqldb *sql.DB) *source.Store {
	return &source.Store{
		DB:       sqldb,
		Now:      func() time.Time { return time.Now().In(cfg.Location) },
		Location: cfg.Location,
	}
}

// logSources orders the configured sources: remote API first, then the
// local store, then the export file.
func logSources(store *source.Store) source.Chain {
	var chain source.Chain
	if cfg.APIBaseURL != "" {
		chain = append(chain, &source.API{
			BaseURL:  cfg.APIBaseURL,
			Token:    cfg.APIToken,
			Location: cfg.Location,
		})
	}
	chain = append(chain, store)
	if cfg.ExportFile != "" {
		chain = append(chain, &source.File{Path: cfg.ExportFile, Location: cfg.Location})
	}
	return chain
}

func newPipeline(sqldb *sql.DB, onPublish func(*pipeline.Snapshot)) *pipeline.Pipeline {
	store := newStore(sqldb)
	return pipeline.New(pipeline.Options{
		UserID:    cfg.UserID,
		Logs:      logSources(store),
		Goals:     store,
		Clock:     service.SystemClock(cfg.Location),
		OnPublish: onPublish,
	})
}

func parseRequest(rangeArg, metricArg string) (pipeline.Request, error) {
	key, err := service.ParseRangeKey(rangeArg)
	if err != nil {
		return pipeline.Request{}, err
	}
	metric, err := service.ParseMetric(metricArg)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{Range: key, Metric: metric}, nil
}

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

func parseDateTimeOrNow(date, timeStr string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now().In(loc), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}
