package service

import (
	"fmt"

	"github.com/saadjs/kcal-trends/internal/model"
)

type TrendReport struct {
	Metric        Metric            `json:"metric"`
	Unit          string            `json:"unit"`
	Range         TimeRange         `json:"range"`
	PreviousRange TimeRange         `json:"previous_range"`
	Buckets       []DayBucket       `json:"buckets"`
	Summary       StatisticsSummary `json:"summary"`
	Comparison    ComparisonResult  `json:"comparison"`
	Totals        MacroTotals       `json:"totals"`
	Goal          *GoalAnnotation   `json:"goal,omitempty"`
}

type GoalAnnotation struct {
	Calories      float64 `json:"calories"`
	DaysOverGoal  int     `json:"days_over_goal"`
	DaysEvaluated int     `json:"days_evaluated"`
}

// BuildReport aggregates logs into the current window and its previous
// period. The previous period reuses the same logs rather than fetching
// again.
func BuildReport(logs []model.LogEntry, current TimeRange, metric Metric) (*TrendReport, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	previous, err := PreviousRange(current)
	if err != nil {
		return nil, fmt.Errorf("resolve previous period: %w", err)
	}

	buckets := AggregateDays(logs, current)
	prevTotal := ComputeStatistics(AggregateDays(logs, previous), metric).Total
	summary := Summarize(buckets, metric)

	return &TrendReport{
		Metric:        metric,
		Unit:          metric.Unit(),
		Range:         current,
		PreviousRange: previous,
		Buckets:       buckets,
		Summary:       summary,
		Comparison:    Compare(summary.Total, &prevTotal),
		Totals:        SumBuckets(buckets),
	}, nil
}

// EmptyReport is the zero-data report shown when no log source answered.
// The comparison has no previous total.
func EmptyReport(current TimeRange, metric Metric) *TrendReport {
	previous, _ := PreviousRange(current)
	buckets := AggregateDays(nil, current)
	return &TrendReport{
		Metric:        metric,
		Unit:          metric.Unit(),
		Range:         current,
		PreviousRange: previous,
		Buckets:       buckets,
		Summary:       Summarize(buckets, metric),
		Comparison:    Compare(0, nil),
		Totals:        MacroTotals{},
	}
}

// AnnotateGoal attaches a calorie goal. Days over goal are only counted
// for the calories metric and only on days with data.
func AnnotateGoal(r *TrendReport, calories *float64) {
	if r == nil || calories == nil {
		return
	}
	g := &GoalAnnotation{Calories: *calories}
	if r.Metric == MetricCalories {
		for i := range r.Buckets {
			if r.Buckets[i].Calories <= 0 {
				continue
			}
			g.DaysEvaluated++
			if r.Buckets[i].Calories > *calories {
				g.DaysOverGoal++
			}
		}
	}
	r.Goal = g
}
