package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/kcal-trends/internal/logger"
	"github.com/saadjs/kcal-trends/internal/model"
)

// Zone-less layouts are wall-clock times in the caller's calendar.
var localTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Store reads logs and goals from the local SQLite database.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
	// Location reads zone-less timestamps. Nil means UTC.
	Location *time.Location
}

func (s *Store) Name() string {
	return "store"
}

func (s *Store) FetchLogs(ctx context.Context, userID string) ([]model.LogEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, name, consumed_at, calories, protein_g, carbs_g, fat_g
FROM entries
WHERE user_id = ?
ORDER BY consumed_at ASC, id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	items := make([]model.LogEntry, 0)
	skipped := 0
	for rows.Next() {
		var (
			id         int64
			e          model.LogEntry
			consumedAt string
		)
		if err := rows.Scan(&id, &e.Name, &consumedAt, &e.Calories, &e.Protein, &e.Carbs, &e.Fat); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		t, ok := parseTimestamp(consumedAt, s.Location)
		if !ok {
			skipped++
			continue
		}
		e.ID = fmt.Sprintf("%d", id)
		e.ConsumedAt = t
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	if skipped > 0 {
		logger.Warn("skipped entries with unreadable timestamps", "user_id", userID, "count", skipped)
	}
	return items, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertEntry stores a log entry. Nutrient values are written as given so
// loosely typed imports survive until aggregation.
func (s *Store) InsertEntry(ctx context.Context, userID string, e model.LogEntry) (int64, error) {
	return insertEntry(ctx, s.DB, userID, e)
}

// InsertEntryTx is InsertEntry inside a caller-owned transaction.
func (s *Store) InsertEntryTx(ctx context.Context, tx *sql.Tx, userID string, e model.LogEntry) (int64, error) {
	return insertEntry(ctx, tx, userID, e)
}

func insertEntry(ctx context.Context, ex execer, userID string, e model.LogEntry) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("user id is required")
	}
	if e.ConsumedAt.IsZero() {
		return 0, fmt.Errorf("consumed_at is required")
	}
	res, err := ex.ExecContext(ctx, `
INSERT INTO entries(user_id, name, consumed_at, calories, protein_g, carbs_g, fat_g)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, userID, strings.TrimSpace(e.Name), e.ConsumedAt.UTC().Format(time.RFC3339Nano), e.Calories, e.Protein, e.Carbs, e.Fat)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted entry id: %w", err)
	}
	return id, nil
}

func (s *Store) FetchCalorieGoal(ctx context.Context, userID string) (*float64, error) {
	goal, err := s.CurrentGoal(ctx, userID, s.now().Format("2006-01-02"))
	if err != nil || goal == nil {
		return nil, err
	}
	return &goal.Calories, nil
}

func (s *Store) SetGoal(ctx context.Context, g model.Goal) error {
	if strings.TrimSpace(g.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if g.Calories < 0 || g.ProteinG < 0 || g.CarbsG < 0 || g.FatG < 0 {
		return fmt.Errorf("goal values must be >= 0")
	}
	g.EffectiveDate = strings.TrimSpace(g.EffectiveDate)
	if g.EffectiveDate == "" {
		g.EffectiveDate = s.now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", g.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effective date %q (expected YYYY-MM-DD)", g.EffectiveDate)
	}

	_, err := s.DB.ExecContext(ctx, `
INSERT INTO goals(user_id, calories, protein_g, carbs_g, fat_g, effective_date)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, effective_date) DO UPDATE SET
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g
`, g.UserID, g.Calories, g.ProteinG, g.CarbsG, g.FatG, g.EffectiveDate)
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	return nil
}

// CurrentGoal returns the latest goal effective on or before date.
func (s *Store) CurrentGoal(ctx context.Context, userID, date string) (*model.Goal, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	var g model.Goal
	err := s.DB.QueryRowContext(ctx, `
SELECT id, user_id, calories, protein_g, carbs_g, fat_g, effective_date
FROM goals
WHERE user_id = ? AND effective_date <= ?
ORDER BY effective_date DESC
LIMIT 1
`, userID, date).Scan(&g.ID, &g.UserID, &g.Calories, &g.ProteinG, &g.CarbsG, &g.FatG, &g.EffectiveDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("current goal for %s: %w", date, err)
	}
	return &g, nil
}

// QualityReport counts stored entries whose values aggregation will have
// to coerce or skip.
type QualityReport struct {
	Entries           int            `json:"entries"`
	NonNumeric        map[string]int `json:"non_numeric"`
	UnreadableTimes   int            `json:"unreadable_timestamps"`
	AffectedEntryRows int            `json:"affected_entry_rows"`
}

func (s *Store) Inspect(ctx context.Context, userID string) (QualityReport, error) {
	out := QualityReport{NonNumeric: map[string]int{}}
	rows, err := s.DB.QueryContext(ctx, `
SELECT consumed_at, typeof(calories), typeof(protein_g), typeof(carbs_g), typeof(fat_g)
FROM entries
WHERE user_id = ?
`, userID)
	if err != nil {
		return out, fmt.Errorf("query entries for inspection: %w", err)
	}
	defer rows.Close()

	columns := []string{"calories", "protein_g", "carbs_g", "fat_g"}
	for rows.Next() {
		var consumedAt string
		kinds := make([]string, len(columns))
		if err := rows.Scan(&consumedAt, &kinds[0], &kinds[1], &kinds[2], &kinds[3]); err != nil {
			return out, fmt.Errorf("scan entry for inspection: %w", err)
		}
		out.Entries++
		affected := false
		if _, ok := parseTimestamp(consumedAt, s.Location); !ok {
			out.UnreadableTimes++
			affected = true
		}
		for i, kind := range kinds {
			if kind != "integer" && kind != "real" {
				out.NonNumeric[columns[i]]++
				affected = true
			}
		}
		if affected {
			out.AffectedEntryRows++
		}
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate entries for inspection: %w", err)
	}
	return out, nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func parseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
