package service

type ComparisonResult struct {
	CurrentTotal  float64  `json:"current_total"`
	PreviousTotal *float64 `json:"previous_total"`
	AbsDelta      *float64 `json:"abs_delta"`
	DeltaPct      *float64 `json:"delta_pct"`
}

// PercentDelta is the change from previous to current in percent. It is
// nil when there is no previous total. A zero previous total yields 100
// if anything was consumed now and 0 otherwise.
func PercentDelta(current float64, previous *float64) *float64 {
	if previous == nil {
		return nil
	}
	var v float64
	switch {
	case *previous == 0 && current > 0:
		v = 100
	case *previous == 0:
		v = 0
	default:
		v = ((current - *previous) / *previous) * 100
	}
	return &v
}

func Compare(current float64, previous *float64) ComparisonResult {
	out := ComparisonResult{
		CurrentTotal: current,
		DeltaPct:     PercentDelta(current, previous),
	}
	if previous != nil {
		p := *previous
		d := current - p
		out.PreviousTotal = &p
		out.AbsDelta = &d
	}
	return out
}
