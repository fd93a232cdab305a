package trends

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// runCLI executes the root command with fresh flag values.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dbPath, userID, tzName, logLevel, logFormat = "", "", "", "", ""
	showRange, showMetric, showJSON, showChart = "this-week", "calories", false, false
	compareRange, compareJSON = "this-week", false
	doctorJSON, doctorStrict = false, false
	entryName, entryCalories, entryProtein, entryCarbs, entryFat = "", 0, 0, 0, 0
	entryDate, entryTime = "", ""
	goalCalories, goalProtein, goalCarbs, goalFat, goalDate = 0, 0, 0, 0, ""

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"KCAL_DB_PATH", "KCAL_USER_ID", "KCAL_API_URL", "KCAL_API_TOKEN", "KCAL_API_TIMEOUT", "KCAL_EXPORT_FILE", "KCAL_TIMEZONE", "KCAL_LOG_LEVEL", "KCAL_LOG_FORMAT", "KCAL_HTTP_ADDR"} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
}

func TestRootHelp(t *testing.T) {
	isolateEnv(t)
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "show") || !strings.Contains(out, "compare") {
		t.Fatalf("expected subcommands in help output, got:\n%s", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "trends.db")
	for i := 0; i < 2; i++ {
		if _, err := runCLI(t, "--db", path, "init"); err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestShowJSONAfterEntries(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "trends.db")
	today := time.Now().UTC().Format("2006-01-02")

	for _, kcal := range []string{"300", "450"} {
		if _, err := runCLI(t, "--db", path, "--tz", "UTC", "--user", "u1", "entry", "add", "--name", "meal", "--calories", kcal, "--protein", "20", "--date", today, "--time", "12:00"); err != nil {
			t.Fatalf("entry add: %v", err)
		}
	}
	if _, err := runCLI(t, "--db", path, "--tz", "UTC", "--user", "u2", "entry", "add", "--calories", "9999", "--date", today, "--time", "12:00"); err != nil {
		t.Fatalf("entry add other user: %v", err)
	}

	out, err := runCLI(t, "--db", path, "--tz", "UTC", "--user", "u1", "show", "--range", "30d", "--json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var snap struct {
		Unavailable bool `json:"unavailable"`
		Report      struct {
			Buckets []json.RawMessage `json:"buckets"`
			Summary struct {
				Total        float64 `json:"total"`
				DaysWithData int     `json:"days_with_data"`
				Streak       int     `json:"streak"`
			} `json:"summary"`
			Totals struct {
				Protein float64 `json:"protein_g"`
			} `json:"totals"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode show output: %v\n%s", err, out)
	}
	if snap.Unavailable {
		t.Fatalf("expected store data to be available")
	}
	if len(snap.Report.Buckets) != 30 {
		t.Fatalf("expected 30 buckets, got %d", len(snap.Report.Buckets))
	}
	if snap.Report.Summary.Total != 750 || snap.Report.Summary.DaysWithData != 1 || snap.Report.Summary.Streak != 1 {
		t.Fatalf("unexpected summary: %+v", snap.Report.Summary)
	}
	if snap.Report.Totals.Protein != 40 {
		t.Fatalf("expected protein total 40, got %.1f", snap.Report.Totals.Protein)
	}
}

func TestShowTableWithGoalAndChart(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "trends.db")
	today := time.Now().UTC().Format("2006-01-02")

	if _, err := runCLI(t, "--db", path, "--tz", "UTC", "goal", "set", "--calories", "2000", "--effective-date", "2020-01-01"); err != nil {
		t.Fatalf("goal set: %v", err)
	}
	if _, err := runCLI(t, "--db", path, "--tz", "UTC", "entry", "add", "--calories", "2500", "--date", today, "--time", "08:00"); err != nil {
		t.Fatalf("entry add: %v", err)
	}

	out, err := runCLI(t, "--db", path, "--tz", "UTC", "show", "--range", "90d", "--chart")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Range: ninety_days", "(90 days)", "Total: 2500.0 kcal", "Streak: 1 days", "Goal: 2000 kcal, over on 1/1 days", "goal in red", "DATE\tKCAL\tP\tC\tF"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestShowRejectsUnknownMetric(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "trends.db")
	if _, err := runCLI(t, "--db", path, "show", "--metric", "fiber"); err == nil {
		t.Fatalf("expected unknown metric error")
	}
	if _, err := runCLI(t, "--db", path, "show", "--range", "fortnight"); err == nil {
		t.Fatalf("expected unknown range error")
	}
}

func TestCompareListsEveryMetric(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "trends.db")
	out, err := runCLI(t, "--db", path, "--tz", "UTC", "compare", "--range", "last-week")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	for _, want := range []string{"METRIC\tCURRENT\tPREVIOUS\tCHANGE\tPCT", "calories\t0.0\t0.0\t+0.0\t+0.0%", "protein", "carbs", "fat"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEntryImportAndDoctor(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "trends.db")
	export := filepath.Join(dir, "export.yaml")
	if err := os.WriteFile(export, []byte(`
local:
  - name: Toast
    consumed_at: 2026-02-10T08:00:00Z
    calories: 180
  - name: Mystery
    consumed_at: 2026-02-10T09:00:00Z
    calories: unknown
`), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	out, err := runCLI(t, "--db", path, "entry", "import", export)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 2 entries") {
		t.Fatalf("unexpected import output: %s", out)
	}

	out, err = runCLI(t, "--db", path, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !strings.Contains(out, "Entries: 2") || !strings.Contains(out, "Non-numeric calories: 1") {
		t.Fatalf("unexpected doctor output:\n%s", out)
	}

	if _, err := runCLI(t, "--db", path, "doctor", "--strict"); err == nil {
		t.Fatalf("expected strict doctor to fail")
	}
}

func TestVersionCommand(t *testing.T) {
	isolateEnv(t)
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "kcal-trends ") || !strings.Contains(out, "go: ") {
		t.Fatalf("unexpected version output: %s", out)
	}
}

func TestInvalidTimezoneFlag(t *testing.T) {
	isolateEnv(t)
	if _, err := runCLI(t, "--tz", "Mars/Olympus", "version"); err == nil {
		t.Fatalf("expected invalid timezone error")
	}
}

func TestLogFormatFlag(t *testing.T) {
	isolateEnv(t)
	if _, err := runCLI(t, "--log-format", "json", "version"); err != nil {
		t.Fatalf("json log format: %v", err)
	}
	if _, err := runCLI(t, "--log-format", "xml", "version"); err == nil {
		t.Fatalf("expected invalid log format error")
	}
	t.Setenv("KCAL_LOG_FORMAT", "yaml")
	if _, err := runCLI(t, "version"); err == nil {
		t.Fatalf("expected invalid KCAL_LOG_FORMAT error")
	}
}
