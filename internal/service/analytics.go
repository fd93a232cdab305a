package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/kcal-trends/internal/model"
)

var ErrUnknownMetric = errors.New("unknown metric (use calories|protein|carbs|fat)")

type Metric string

const (
	MetricCalories Metric = "calories"
	MetricProtein  Metric = "protein"
	MetricCarbs    Metric = "carbs"
	MetricFat      Metric = "fat"
)

var Metrics = []Metric{MetricCalories, MetricProtein, MetricCarbs, MetricFat}

func ParseMetric(value string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "calories", "kcal":
		return MetricCalories, nil
	case "protein", "p":
		return MetricProtein, nil
	case "carbs", "c":
		return MetricCarbs, nil
	case "fat", "f":
		return MetricFat, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, value)
	}
}

// Value selects the metric from a bucket. Unknown metrics read as 0.
func (m Metric) Value(b DayBucket) float64 {
	switch m {
	case MetricCalories:
		return b.Calories
	case MetricProtein:
		return b.Protein
	case MetricCarbs:
		return b.Carbs
	case MetricFat:
		return b.Fat
	default:
		return 0
	}
}

func (m Metric) Unit() string {
	if m == MetricCalories {
		return "kcal"
	}
	return "g"
}

type DayBucket struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
}

// AggregateDays returns one zeroed bucket per calendar day of r, in date
// order, with every log inside r added to the bucket of its local date.
// Logs outside r are ignored.
func AggregateDays(logs []model.LogEntry, r TimeRange) []DayBucket {
	days := r.DayCount()
	buckets := make([]DayBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := addDays(r.Start, i).Format(dateLayout)
		buckets[i].Date = date
		index[date] = i
	}

	loc := r.Location()
	for _, log := range logs {
		if !r.Contains(log.ConsumedAt) {
			continue
		}
		i, ok := index[log.ConsumedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		buckets[i].Calories += Coerce(log.Calories)
		buckets[i].Protein += Coerce(log.Protein)
		buckets[i].Carbs += Coerce(log.Carbs)
		buckets[i].Fat += Coerce(log.Fat)
	}
	return buckets
}

type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
}

func SumBuckets(buckets []DayBucket) MacroTotals {
	var out MacroTotals
	for i := range buckets {
		out.Calories += buckets[i].Calories
		out.Protein += buckets[i].Protein
		out.Carbs += buckets[i].Carbs
		out.Fat += buckets[i].Fat
	}
	return out
}

func (t MacroTotals) Value(m Metric) float64 {
	return m.Value(DayBucket{Calories: t.Calories, Protein: t.Protein, Carbs: t.Carbs, Fat: t.Fat})
}
