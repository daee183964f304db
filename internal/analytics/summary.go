// Package analytics computes bucketed dimensional aggregates, rolling
// active-user windows and cross-service rankings over stored events.
package analytics

import (
	"time"

	"weblytics/internal/timeframe"
)

// DeviceCounts tallies the frozen device-class flags. The flags were
// derived once at ingestion; they are summed here, never re-derived.
type DeviceCounts struct {
	Mobile  int `json:"mobile"`
	Desktop int `json:"desktop"`
}

// Summary is the fixed-shape dimensional tally for one bucket. Field names
// never vary with the interval; the weekday histogram is simply absent for
// daily buckets.
type Summary struct {
	Total      int            `json:"total"`
	ByDevice   DeviceCounts   `json:"by_device"`
	ByOS       map[string]int `json:"by_os"`
	ByBrowser  map[string]int `json:"by_browser"`
	ByReferrer map[string]int `json:"by_referrer"`
	ByRegion   map[string]int `json:"by_region"`
	ByCountry  map[string]int `json:"by_country"`
	ByHour     [24]int        `json:"by_hour"`
	ByWeekday  map[string]int `json:"by_weekday,omitempty"`
}

// weekdayNames in reporting order, Monday first.
var weekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// newSummary returns the zero-filled summary shape. Hour and weekday
// histograms are pre-populated so empty buckets still carry the complete
// shape.
func newSummary(interval timeframe.Interval) *Summary {
	s := &Summary{
		ByOS:       make(map[string]int),
		ByBrowser:  make(map[string]int),
		ByReferrer: make(map[string]int),
		ByRegion:   make(map[string]int),
		ByCountry:  make(map[string]int),
	}
	if interval != timeframe.IntervalDaily {
		s.ByWeekday = make(map[string]int, len(weekdayNames))
		for _, name := range weekdayNames {
			s.ByWeekday[name] = 0
		}
	}
	return s
}

// SeriesStats are the range-wide statistics over the per-bucket totals.
// Every bucket participates, empty ones included; Avg truncates.
type SeriesStats struct {
	Min int `json:"min"`
	Max int `json:"max"`
	Avg int `json:"avg"`
}

func seriesStats(buckets []timeframe.Bucket, summaries map[string]*Summary) SeriesStats {
	if len(buckets) == 0 {
		return SeriesStats{}
	}

	stats := SeriesStats{Min: summaries[buckets[0].Key].Total}
	sum := 0
	for _, b := range buckets {
		total := summaries[b.Key].Total
		if total < stats.Min {
			stats.Min = total
		}
		if total > stats.Max {
			stats.Max = total
		}
		sum += total
	}
	stats.Avg = sum / len(buckets)
	return stats
}

// bucketIndex locates the bucket containing t, relying on the planner's
// ordered, contiguous output. Returns -1 when t is outside the range.
func bucketIndex(buckets []timeframe.Bucket, t time.Time) int {
	for i, b := range buckets {
		if b.Contains(t) {
			return i
		}
	}
	return -1
}
