// Package timeframe provides calendar-aligned bucketing of date ranges.
package timeframe

import (
	"fmt"
	"time"
)

// Interval is the reporting granularity of a bucketed query.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

const dateKeyFormat = "20060102"

// ParseInterval validates a caller-supplied interval string. An empty
// string defaults to daily; anything else unknown is a caller error.
func ParseInterval(s string) (Interval, error) {
	switch s {
	case "", string(IntervalDaily):
		return IntervalDaily, nil
	case string(IntervalWeekly):
		return IntervalWeekly, nil
	case string(IntervalMonthly):
		return IntervalMonthly, nil
	default:
		return "", fmt.Errorf("unknown interval: %q", s)
	}
}

// ParseDate parses a YYYYMMDD date parameter at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYYMMDD", s)
	}
	return t, nil
}

// Bucket is a half-open calendar period [Start, End) with its canonical key.
type Bucket struct {
	Start time.Time
	End   time.Time
	Key   string
}

// Contains reports whether t falls inside the bucket. The upper bound is
// exclusive: an event at exactly End belongs to the next bucket.
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Normalize expands a date range to the interval's calendar boundaries.
// Daily ranges are unchanged; weekly ranges snap to Monday..Sunday;
// monthly ranges snap to the first and last day of their months.
func (iv Interval) Normalize(start, end time.Time) (time.Time, time.Time) {
	switch iv {
	case IntervalWeekly:
		start = startOfWeek(start)
		end = startOfWeek(end).AddDate(0, 0, 6)
	case IntervalMonthly:
		start = startOfMonth(start)
		end = startOfMonth(end).AddDate(0, 0, 32)
		end = startOfMonth(end).AddDate(0, 0, -1)
	}
	return start, end
}

// Advance returns the start of the period following the one starting at t.
// Monthly advancement adds enough days to guarantee crossing into the next
// month, then truncates to day 1, so month-length variation and leap years
// need no special casing.
func (iv Interval) Advance(t time.Time) time.Time {
	switch iv {
	case IntervalWeekly:
		return t.AddDate(0, 0, 7)
	case IntervalMonthly:
		return startOfMonth(t.AddDate(0, 0, 32))
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Key formats the canonical bucket key for the period starting at t:
// YYYYMMDD for daily, YYYYMMDD-YYYYMMDD (first-last day) for weekly,
// YYYYMM for monthly.
func (iv Interval) Key(t time.Time) string {
	switch iv {
	case IntervalWeekly:
		return t.Format(dateKeyFormat) + "-" + t.AddDate(0, 0, 6).Format(dateKeyFormat)
	case IntervalMonthly:
		return t.Format("200601")
	default:
		return t.Format(dateKeyFormat)
	}
}

// Plan partitions [start, end] into an ordered, gapless, non-overlapping
// sequence of calendar buckets after normalizing the range. Every period
// in the normalized range is present even when no events fall inside it;
// callers rely on a complete series for charting.
func Plan(start, end time.Time, iv Interval) []Bucket {
	start, end = iv.Normalize(startOfDay(start), startOfDay(end))
	if end.Before(start) {
		return nil
	}

	var buckets []Bucket
	for cur := start; !cur.After(end); cur = iv.Advance(cur) {
		buckets = append(buckets, Bucket{
			Start: cur,
			End:   iv.Advance(cur),
			Key:   iv.Key(cur),
		})
	}
	return buckets
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// startOfWeek truncates to the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return startOfDay(t).AddDate(0, 0, -(weekday - 1))
}
