package analytics

import (
	"time"

	"weblytics/internal/events"
	"weblytics/internal/timeframe"
)

// ClickRecord is the engine's view of a stored anchor click.
type ClickRecord struct {
	Timestamp time.Time
	SessionID string
	TargetURL string
	ClickType string
	IsMobile  bool
	IsDesktop bool
}

// RecordsFromAnchorClicks adapts stored anchor clicks for aggregation.
func RecordsFromAnchorClicks(rows []events.AnchorClick) []ClickRecord {
	records := make([]ClickRecord, len(rows))
	for i, row := range rows {
		records[i] = ClickRecord{
			Timestamp: row.Visit.Timestamp,
			SessionID: row.Visit.SessionID,
			TargetURL: row.TargetURL,
			ClickType: row.ClickType,
			IsMobile:  row.Visit.IsMobile,
			IsDesktop: row.Visit.IsDesktop,
		}
	}
	return records
}

// ClickSummary tallies one bucket of anchor clicks, keyed by target URL
// rather than by location dimensions.
type ClickSummary struct {
	Total    int            `json:"total"`
	ByTarget map[string]int `json:"by_target"`
	ByType   map[string]int `json:"by_type"`
	ByDevice DeviceCounts   `json:"by_device"`
}

// ClickResult maps bucket keys to click summaries.
type ClickResult struct {
	Buckets map[string]*ClickSummary `json:"data"`
	Total   int                      `json:"total"`
}

// AggregateClicks folds anchor clicks into per-bucket target-URL tallies
// with the same half-open bucket membership as Aggregate.
func AggregateClicks(records []ClickRecord, buckets []timeframe.Bucket) *ClickResult {
	summaries := make(map[string]*ClickSummary, len(buckets))
	for _, b := range buckets {
		summaries[b.Key] = &ClickSummary{
			ByTarget: make(map[string]int),
			ByType:   make(map[string]int),
		}
	}

	total := 0
	for _, r := range records {
		idx := bucketIndex(buckets, r.Timestamp)
		if idx < 0 {
			continue
		}

		s := summaries[buckets[idx].Key]
		s.Total++
		s.ByTarget[r.TargetURL]++
		if r.ClickType != "" {
			s.ByType[r.ClickType]++
		}
		if r.IsMobile {
			s.ByDevice.Mobile++
		}
		if r.IsDesktop {
			s.ByDevice.Desktop++
		}
		total++
	}

	return &ClickResult{Buckets: summaries, Total: total}
}
