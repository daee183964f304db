package analytics

import (
	"fmt"
	"time"
)

const windowKeyFormat = "20060102"

// SessionCounter is the slice of the event store the window calculator
// needs: distinct sessions among pageviews matching a URL substring.
type SessionCounter interface {
	DistinctPageviewSessions(start, end time.Time, urlFilter string) (int64, error)
}

// ActiveUsers reports distinct-session counts for the three fixed rolling
// windows, each keyed by its date span. A zero monthly count means the
// service was effectively unmeasured, and the whole result carries no
// entries; rankings rely on that distinction.
type ActiveUsers struct {
	DAU map[string]int64 `json:"dau"`
	WAU map[string]int64 `json:"wau"`
	MAU map[string]int64 `json:"mau"`
}

// Measured reports whether the result carries any entries.
func (a ActiveUsers) Measured() bool {
	return len(a.MAU) > 0
}

// ActiveUserCalculator answers rolling-window distinct-visitor queries.
// Window boundaries are fixed at construction, anchored at the start of
// the current day in the reporting timezone.
type ActiveUserCalculator struct {
	store   SessionCounter
	loc     *time.Location
	now     func() time.Time
	wauDays int
	mauDays int
}

// NewActiveUserCalculator builds a calculator. wauDays and mauDays are the
// trailing spans before today (6 and 30 in the standard configuration).
// now may be nil for the system clock.
func NewActiveUserCalculator(store SessionCounter, loc *time.Location, wauDays, mauDays int, now func() time.Time) *ActiveUserCalculator {
	if now == nil {
		now = time.Now
	}
	return &ActiveUserCalculator{
		store:   store,
		loc:     loc,
		now:     now,
		wauDays: wauDays,
		mauDays: mauDays,
	}
}

// ActiveUsers counts distinct sessions among pageviews whose URL contains
// urlFilter over [today, today+1d), [today-wau, today+1d) and
// [today-mau, today+1d). Storage errors are fatal for the query.
func (c *ActiveUserCalculator) ActiveUsers(urlFilter string) (ActiveUsers, error) {
	now := c.now().In(c.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	tomorrow := today.AddDate(0, 0, 1)

	weekStart := today.AddDate(0, 0, -c.wauDays)
	monthStart := today.AddDate(0, 0, -c.mauDays)

	mau, err := c.store.DistinctPageviewSessions(monthStart, tomorrow, urlFilter)
	if err != nil {
		return ActiveUsers{}, fmt.Errorf("failed to count monthly active users: %w", err)
	}
	if mau == 0 {
		// Nothing in the widest window: unmeasured, not measured-as-zero.
		return ActiveUsers{}, nil
	}

	dau, err := c.store.DistinctPageviewSessions(today, tomorrow, urlFilter)
	if err != nil {
		return ActiveUsers{}, fmt.Errorf("failed to count daily active users: %w", err)
	}
	wau, err := c.store.DistinctPageviewSessions(weekStart, tomorrow, urlFilter)
	if err != nil {
		return ActiveUsers{}, fmt.Errorf("failed to count weekly active users: %w", err)
	}

	return ActiveUsers{
		DAU: map[string]int64{today.Format(windowKeyFormat): dau},
		WAU: map[string]int64{spanKey(weekStart, today): wau},
		MAU: map[string]int64{spanKey(monthStart, today): mau},
	}, nil
}

func spanKey(start, end time.Time) string {
	return start.Format(windowKeyFormat) + "-" + end.Format(windowKeyFormat)
}
