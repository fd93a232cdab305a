package service_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/saadjs/kcal-trends/internal/model"
	"github.com/saadjs/kcal-trends/internal/service"
)

func thisWeek(t *testing.T, loc *time.Location) service.TimeRange {
	t.Helper()
	r, err := service.ResolveRange(service.RangeThisWeek, time.Date(2026, 2, 11, 12, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("resolve this week: %v", err)
	}
	return r
}

func TestAggregateDaysWeekScenario(t *testing.T) {
	t.Parallel()
	r := thisWeek(t, time.UTC)
	logs := []model.LogEntry{
		{ConsumedAt: time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC), Calories: 500},
		{ConsumedAt: time.Date(2026, 2, 11, 19, 0, 0, 0, time.UTC), Calories: 700},
	}

	buckets := service.AggregateDays(logs, r)
	want := []float64{500, 0, 700, 0, 0, 0, 0}
	if len(buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(buckets))
	}
	for i := range want {
		if buckets[i].Calories != want[i] {
			t.Fatalf("bucket %d (%s): expected %.0f, got %.0f", i, buckets[i].Date, want[i], buckets[i].Calories)
		}
	}
	if buckets[0].Date != "2026-02-09" || buckets[6].Date != "2026-02-15" {
		t.Fatalf("unexpected bucket dates %s..%s", buckets[0].Date, buckets[6].Date)
	}

	s := service.Summarize(buckets, service.MetricCalories)
	if s.Total != 1200 || s.DaysWithData != 2 || s.Average != 600 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.Best != 700 || s.BestDate != "2026-02-11" {
		t.Fatalf("expected best 700 on 2026-02-11, got %.0f on %s", s.Best, s.BestDate)
	}
	if s.Worst != 500 || s.WorstDate != "2026-02-09" {
		t.Fatalf("expected worst 500 on 2026-02-09, got %.0f on %s", s.Worst, s.WorstDate)
	}
	if s.Streak != 0 {
		t.Fatalf("expected streak 0, got %d", s.Streak)
	}
}

func TestAggregateDaysEmptyLastWeek(t *testing.T) {
	t.Parallel()
	r, err := service.ResolveRange(service.RangeLastWeek, time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	buckets := service.AggregateDays(nil, r)
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	s := service.Summarize(buckets, service.MetricCalories)
	if s.Total != 0 || s.Average != 0 || s.Best != 0 || s.Worst != 0 || s.Streak != 0 {
		t.Fatalf("expected all-zero summary, got %+v", s)
	}
	if s.WorstDate != "" {
		t.Fatalf("expected no worst date, got %s", s.WorstDate)
	}
}

func TestAggregateDaysWindowBoundsAreInclusive(t *testing.T) {
	t.Parallel()
	r := thisWeek(t, time.UTC)
	logs := []model.LogEntry{
		{ConsumedAt: r.Start, Calories: 1},
		{ConsumedAt: r.End, Calories: 2},
		{ConsumedAt: r.Start.Add(-time.Nanosecond), Calories: 100},
		{ConsumedAt: r.End.Add(time.Nanosecond), Calories: 100},
	}
	buckets := service.AggregateDays(logs, r)
	if buckets[0].Calories != 1 || buckets[6].Calories != 2 {
		t.Fatalf("expected boundary logs to land in first and last bucket, got %+v", buckets)
	}
	if total := service.SumBuckets(buckets).Calories; total != 3 {
		t.Fatalf("expected out-of-window logs to be dropped, total=%.0f", total)
	}
}

func TestAggregateDaysUsesLocalCalendarDate(t *testing.T) {
	t.Parallel()
	ny := mustLoad(t, "America/New_York")
	r := thisWeek(t, ny)
	// 03:00 UTC on the 10th is 22:00 on the 9th in New York.
	logs := []model.LogEntry{{ConsumedAt: time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC), Protein: 30}}
	buckets := service.AggregateDays(logs, r)
	if buckets[0].Protein != 30 || buckets[1].Protein != 0 {
		t.Fatalf("expected log in 2026-02-09 bucket, got %+v", buckets[:2])
	}
}

func TestAggregateDaysDaylightSavingDay(t *testing.T) {
	t.Parallel()
	ny := mustLoad(t, "America/New_York")
	r, err := service.ResolveRange(service.RangeThisWeek, time.Date(2026, 3, 5, 12, 0, 0, 0, ny))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	logs := []model.LogEntry{
		{ConsumedAt: time.Date(2026, 3, 8, 0, 30, 0, 0, ny), Carbs: 10},
		{ConsumedAt: time.Date(2026, 3, 8, 23, 30, 0, 0, ny), Carbs: 15},
	}
	buckets := service.AggregateDays(logs, r)
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	if buckets[6].Date != "2026-03-08" || buckets[6].Carbs != 25 {
		t.Fatalf("expected 25g carbs on 2026-03-08, got %+v", buckets[6])
	}
}

func TestAggregateDaysCoercesRawValues(t *testing.T) {
	t.Parallel()
	r := thisWeek(t, time.UTC)
	at := time.Date(2026, 2, 12, 12, 0, 0, 0, time.UTC)
	logs := []model.LogEntry{
		{ConsumedAt: at, Calories: "250", Protein: " 12.5 ", Carbs: nil, Fat: "abc"},
		{ConsumedAt: at, Calories: int64(100), Protein: math.NaN(), Carbs: []byte("7"), Fat: true},
		{ConsumedAt: at, Calories: math.Inf(1), Protein: float32(2.5), Carbs: map[string]int{"x": 1}, Fat: 3},
	}
	b := service.AggregateDays(logs, r)[3]
	if b.Calories != 350 || b.Protein != 15 || b.Carbs != 7 || b.Fat != 3 {
		t.Fatalf("unexpected coerced bucket: %+v", b)
	}
}

func TestAggregateDaysPreservesTotals(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(42))
	logs := make([]model.LogEntry, 0, 500)
	for i := 0; i < 500; i++ {
		at := now.Add(-time.Duration(rng.Intn(150*24)) * time.Hour).Add(time.Duration(rng.Intn(3600)) * time.Second)
		logs = append(logs, model.LogEntry{
			ConsumedAt: at,
			Calories:   float64(rng.Intn(900)),
			Protein:    float64(rng.Intn(60)),
			Carbs:      float64(rng.Intn(120)),
			Fat:        float64(rng.Intn(40)),
		})
	}

	for _, key := range service.RangeKeys {
		r, err := service.ResolveRange(key, now)
		if err != nil {
			t.Fatalf("resolve %s: %v", key, err)
		}
		buckets := service.AggregateDays(logs, r)
		if len(buckets) != r.DayCount() {
			t.Fatalf("%s: expected %d buckets, got %d", key, r.DayCount(), len(buckets))
		}
		var want service.MacroTotals
		for _, l := range logs {
			if !r.Contains(l.ConsumedAt) {
				continue
			}
			want.Calories += l.Calories.(float64)
			want.Protein += l.Protein.(float64)
			want.Carbs += l.Carbs.(float64)
			want.Fat += l.Fat.(float64)
		}
		if got := service.SumBuckets(buckets); got != want {
			t.Fatalf("%s: expected totals %+v, got %+v", key, want, got)
		}
		for i := 1; i < len(buckets); i++ {
			if buckets[i-1].Date >= buckets[i].Date {
				t.Fatalf("%s: buckets out of order at %d", key, i)
			}
		}
	}
}

func TestParseMetric(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]service.Metric{
		"calories": service.MetricCalories,
		"KCAL":     service.MetricCalories,
		"protein":  service.MetricProtein,
		"carbs":    service.MetricCarbs,
		"fat":      service.MetricFat,
	} {
		got, err := service.ParseMetric(in)
		if err != nil || got != want {
			t.Fatalf("parse %q: expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := service.ParseMetric("fiber"); err == nil {
		t.Fatalf("expected unknown metric to fail")
	}
}
