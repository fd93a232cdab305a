package service

type StatisticsSummary struct {
	Total         float64 `json:"total"`
	Average       float64 `json:"average"`
	Best          float64 `json:"best"`
	Worst         float64 `json:"worst"`
	BestDate      string  `json:"best_date,omitempty"`
	WorstDate     string  `json:"worst_date,omitempty"`
	DaysWithData  int     `json:"days_with_data"`
	DayCount      int     `json:"day_count"`
	Streak        int     `json:"streak"`
	LongestStreak int     `json:"longest_streak"`
}

// ComputeStatistics reduces buckets to total, average per logged day, and
// best/worst day. Worst only considers days with a positive value. Ties go
// to the earliest date. Streak fields are left zero; see Summarize.
func ComputeStatistics(buckets []DayBucket, metric Metric) StatisticsSummary {
	out := StatisticsSummary{DayCount: len(buckets)}
	if len(buckets) == 0 {
		return out
	}

	out.Best = metric.Value(buckets[0])
	out.BestDate = buckets[0].Date
	for i := range buckets {
		v := metric.Value(buckets[i])
		out.Total += v
		if v > out.Best {
			out.Best = v
			out.BestDate = buckets[i].Date
		}
		if v <= 0 {
			continue
		}
		out.DaysWithData++
		if out.WorstDate == "" || v < out.Worst {
			out.Worst = v
			out.WorstDate = buckets[i].Date
		}
	}
	if out.DaysWithData > 0 {
		out.Average = out.Total / float64(out.DaysWithData)
	}
	return out
}

// Summarize is ComputeStatistics plus the trailing and longest streaks.
func Summarize(buckets []DayBucket, metric Metric) StatisticsSummary {
	out := ComputeStatistics(buckets, metric)
	out.Streak = CurrentStreak(buckets, metric)
	out.LongestStreak = LongestStreak(buckets, metric)
	return out
}
