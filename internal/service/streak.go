package service

// CurrentStreak counts consecutive days with a positive value, walking
// back from the latest bucket.
func CurrentStreak(buckets []DayBucket, metric Metric) int {
	streak := 0
	for i := len(buckets) - 1; i >= 0; i-- {
		if metric.Value(buckets[i]) <= 0 {
			break
		}
		streak++
	}
	return streak
}

func LongestStreak(buckets []DayBucket, metric Metric) int {
	run, longest := 0, 0
	for i := range buckets {
		if metric.Value(buckets[i]) <= 0 {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}
