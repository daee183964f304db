package analytics

import (
	"time"

	"weblytics/internal/events"
	"weblytics/internal/pkg/geoip"
	"weblytics/internal/pkg/referrers"
	ua "weblytics/internal/pkg/user_agent"
	"weblytics/internal/regions"
	"weblytics/internal/timeframe"
)

// Record is the engine's view of a stored event: the enrichment fields
// every event kind shares. Order matters when deduplicating, so callers
// pass records in insertion order.
type Record struct {
	Timestamp time.Time
	SessionID string
	UserAgent string
	Location  string
	Referrer  string
	IsMobile  bool
	IsDesktop bool
}

// RecordsFromPageviews adapts stored pageviews for aggregation.
func RecordsFromPageviews(rows []events.Pageview) []Record {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = recordFromVisit(row.Visit)
		records[i].Referrer = row.ReferrerURL
	}
	return records
}

func recordFromVisit(v events.Visit) Record {
	return Record{
		Timestamp: v.Timestamp,
		SessionID: v.SessionID,
		UserAgent: v.UserAgent,
		Location:  v.Location,
		IsMobile:  v.IsMobile,
		IsDesktop: v.IsDesktop,
	}
}

// Options selects the aggregation mode.
type Options struct {
	// Interval drives the weekday histogram: it is computed only for
	// weekly and monthly buckets.
	Interval timeframe.Interval
	// DedupeBySession keeps only the first-encountered record per distinct
	// session within each bucket before any tally, turning raw hit counts
	// into visitor counts.
	DedupeBySession bool
}

// Result maps every bucket key to its summary, alongside the range-wide
// series statistics. Keys are never omitted: an empty bucket carries the
// zero-filled shape.
type Result struct {
	Buckets map[string]*Summary `json:"data"`
	Stats   SeriesStats         `json:"stats"`
	Total   int                 `json:"total"`
}

// Aggregate folds records into per-bucket dimensional summaries. The same
// inputs always produce the same result; nothing here mutates shared
// state, so concurrent queries need no locking.
func Aggregate(records []Record, buckets []timeframe.Bucket, opts Options) *Result {
	summaries := make(map[string]*Summary, len(buckets))
	for _, b := range buckets {
		summaries[b.Key] = newSummary(opts.Interval)
	}

	// Per-bucket first-seen sessions for dedupe mode.
	seen := make([]map[string]bool, len(buckets))

	// One UA string parses once per query, however many records carry it.
	parseCache := make(map[string]ua.UserAgent)

	total := 0
	for _, r := range records {
		idx := bucketIndex(buckets, r.Timestamp)
		if idx < 0 {
			continue
		}

		if opts.DedupeBySession {
			if seen[idx] == nil {
				seen[idx] = make(map[string]bool)
			}
			if seen[idx][r.SessionID] {
				continue
			}
			seen[idx][r.SessionID] = true
		}

		tally(summaries[buckets[idx].Key], r, opts, parseCache)
		total++
	}

	return &Result{
		Buckets: summaries,
		Stats:   seriesStats(buckets, summaries),
		Total:   total,
	}
}

func tally(s *Summary, r Record, opts Options, parseCache map[string]ua.UserAgent) {
	s.Total++

	if r.IsMobile {
		s.ByDevice.Mobile++
	}
	if r.IsDesktop {
		s.ByDevice.Desktop++
	}

	// OS and browser families are re-derived from the stored UA string. A
	// record whose UA yields no parse drops out of these two dimensions
	// only; it still counts everywhere else.
	if r.UserAgent != "" {
		parsed, ok := parseCache[r.UserAgent]
		if !ok {
			parsed = ua.Parse(r.UserAgent)
			parseCache[r.UserAgent] = parsed
		}
		s.ByOS[parsed.OS]++
		s.ByBrowser[parsed.Browser]++
	}

	s.ByReferrer[referrers.Label(r.Referrer)]++

	city, country := geoip.SplitLocation(r.Location)
	s.ByRegion[regions.Resolve(city)]++
	if country == "" {
		country = geoip.UnknownLocation
	}
	s.ByCountry[country]++

	s.ByHour[r.Timestamp.Hour()]++
	if s.ByWeekday != nil {
		s.ByWeekday[r.Timestamp.Weekday().String()]++
	}
}
