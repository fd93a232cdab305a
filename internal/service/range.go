package service

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type RangeKey string

const (
	RangeThisWeek   RangeKey = "this_week"
	RangeLastWeek   RangeKey = "last_week"
	RangeOneMonth   RangeKey = "one_month"
	RangeNinetyDays RangeKey = "ninety_days"
)

// RangeKeys lists every supported period selector.
var RangeKeys = []RangeKey{RangeThisWeek, RangeLastWeek, RangeOneMonth, RangeNinetyDays}

type RangeResolutionError struct {
	Key RangeKey
}

func (e *RangeResolutionError) Error() string {
	return fmt.Sprintf("unknown range %q (use this-week|last-week|30d|90d)", string(e.Key))
}

// ParseRangeKey accepts the canonical keys plus the CLI spellings
// (this-week, last-week, 30d, 90d, month).
func ParseRangeKey(value string) (RangeKey, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case "this_week", "week":
		return RangeThisWeek, nil
	case "last_week":
		return RangeLastWeek, nil
	case "one_month", "month", "30d", "1m":
		return RangeOneMonth, nil
	case "ninety_days", "90d", "3m":
		return RangeNinetyDays, nil
	default:
		return "", &RangeResolutionError{Key: RangeKey(value)}
	}
}

// TimeRange is an inclusive window of whole calendar days. Start is the
// first instant of its day and End the last instant of its day, both in
// the location of the calendar the range was resolved in.
type TimeRange struct {
	Key   RangeKey  `json:"key"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) Location() *time.Location {
	return r.Start.Location()
}

func (r TimeRange) FromDate() string {
	return r.Start.Format(dateLayout)
}

func (r TimeRange) ToDate() string {
	return r.End.Format(dateLayout)
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DayCount is the number of calendar days in the window. It counts dates,
// so a 23 or 25 hour DST day still counts once.
func (r TimeRange) DayCount() int {
	return inclusiveDayCount(r.Start, r.End)
}

// Clock returns the reference instant used to resolve ranges.
type Clock func() time.Time

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// ResolveRange maps a period selector to a concrete window. The calendar
// is the location of now; callers convert now into the fixed local zone
// before calling.
func ResolveRange(key RangeKey, now time.Time) (TimeRange, error) {
	switch key {
	case RangeThisWeek:
		monday := beginningOfWeek(now)
		return TimeRange{Key: key, Start: monday, End: endOfDay(addDays(monday, 6))}, nil
	case RangeLastWeek:
		monday := addDays(beginningOfWeek(now), -7)
		return TimeRange{Key: key, Start: monday, End: endOfDay(addDays(monday, 6))}, nil
	case RangeOneMonth:
		return trailingDays(key, now, 30), nil
	case RangeNinetyDays:
		return trailingDays(key, now, 90), nil
	default:
		return TimeRange{}, &RangeResolutionError{Key: key}
	}
}

// PreviousRange returns the window the current one is compared against.
// The two week selectors are each other's previous period; trailing
// windows step back by their own length and end the day before Start.
func PreviousRange(current TimeRange) (TimeRange, error) {
	switch current.Key {
	case RangeThisWeek:
		return shiftWeek(current, RangeLastWeek, -7), nil
	case RangeLastWeek:
		return shiftWeek(current, RangeThisWeek, 7), nil
	case RangeOneMonth, RangeNinetyDays:
		days := current.DayCount()
		prevEnd := endOfDay(addDays(current.Start, -1))
		prevStart := addDays(beginningOfDay(prevEnd), -(days - 1))
		return TimeRange{Key: current.Key, Start: prevStart, End: prevEnd}, nil
	default:
		return TimeRange{}, &RangeResolutionError{Key: current.Key}
	}
}

func trailingDays(key RangeKey, now time.Time, days int) TimeRange {
	return TimeRange{
		Key:   key,
		Start: addDays(beginningOfDay(now), -(days - 1)),
		End:   endOfDay(now),
	}
}

func shiftWeek(r TimeRange, key RangeKey, days int) TimeRange {
	start := addDays(r.Start, days)
	return TimeRange{Key: key, Start: start, End: endOfDay(addDays(start, 6))}
}

func beginningOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return addDays(beginningOfDay(t), -(weekday - 1))
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// addDays moves by calendar days and lands on the start of the target day.
func addDays(t time.Time, days int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, t.Location())
}

func inclusiveDayCount(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a)/(24*time.Hour)) + 1
}
