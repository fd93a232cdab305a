package trends

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"github.com/saadjs/kcal-trends/internal/pipeline"
	"github.com/saadjs/kcal-trends/internal/service"
)

const (
	chartHeight   = 10
	chartMinWidth = 20
)

func printSnapshot(out io.Writer, snap *pipeline.Snapshot, withChart bool) {
	r := snap.Report
	s := r.Summary
	unit := r.Unit

	if snap.Unavailable {
		fmt.Fprintln(out, "Log sources unavailable; showing an empty period")
	}
	fmt.Fprintf(out, "Range: %s %s to %s (%d days)\n", r.Range.Key, r.Range.FromDate(), r.Range.ToDate(), s.DayCount)
	fmt.Fprintf(out, "Metric: %s (%s)\n", r.Metric, unit)
	fmt.Fprintf(out, "Total: %.1f %s  Average/day: %.1f %s  Days with data: %d/%d\n", s.Total, unit, s.Average, unit, s.DaysWithData, s.DayCount)
	if s.DaysWithData > 0 {
		fmt.Fprintf(out, "Best day: %s (%.1f %s)\n", s.BestDate, s.Best, unit)
		fmt.Fprintf(out, "Worst day: %s (%.1f %s)\n", s.WorstDate, s.Worst, unit)
	} else {
		fmt.Fprintln(out, "Best day: -")
		fmt.Fprintln(out, "Worst day: -")
	}
	fmt.Fprintf(out, "Streak: %d days (longest %d)\n", s.Streak, s.LongestStreak)
	fmt.Fprintln(out, comparisonLine(r))
	if r.Goal != nil && r.Metric == service.MetricCalories {
		fmt.Fprintf(out, "Goal: %.0f kcal, over on %d/%d days\n", r.Goal.Calories, r.Goal.DaysOverGoal, r.Goal.DaysEvaluated)
	}
	fmt.Fprintf(out, "Macros: kcal=%.0f P=%.1f C=%.1f F=%.1f\n", r.Totals.Calories, r.Totals.Protein, r.Totals.Carbs, r.Totals.Fat)

	if withChart {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderChart(r))
	}

	fmt.Fprintln(out, "\nDATE\tKCAL\tP\tC\tF")
	for _, b := range r.Buckets {
		fmt.Fprintf(out, "%s\t%.0f\t%.1f\t%.1f\t%.1f\n", b.Date, b.Calories, b.Protein, b.Carbs, b.Fat)
	}
}

func comparisonLine(r *service.TrendReport) string {
	c := r.Comparison
	prefix := fmt.Sprintf("vs %s (%s to %s):", r.PreviousRange.Key, r.PreviousRange.FromDate(), r.PreviousRange.ToDate())
	if c.PreviousTotal == nil || c.DeltaPct == nil {
		return prefix + " no previous data"
	}
	return fmt.Sprintf("%s previous=%.1f change=%+.1f (%+.1f%%)", prefix, *c.PreviousTotal, *c.AbsDelta, *c.DeltaPct)
}

// renderChart plots the metric per day, with the calorie goal as a second
// series when one is set.
func renderChart(r *service.TrendReport) string {
	values := make([]float64, len(r.Buckets))
	for i, b := range r.Buckets {
		values[i] = r.Metric.Value(b)
	}
	if len(values) == 0 {
		return "No data available"
	}
	width := len(values)
	if width < chartMinWidth {
		width = chartMinWidth
	}
	caption := fmt.Sprintf("%s per day (%s) %s to %s", r.Metric, r.Unit, r.Range.FromDate(), r.Range.ToDate())

	if r.Goal != nil && r.Metric == service.MetricCalories {
		goal := make([]float64, len(values))
		for i := range goal {
			goal[i] = r.Goal.Calories
		}
		return asciigraph.PlotMany([][]float64{values, goal},
			asciigraph.Height(chartHeight),
			asciigraph.Width(width),
			asciigraph.Caption(caption+", goal in red"),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		)
	}
	return asciigraph.Plot(values,
		asciigraph.Height(chartHeight),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
