package analytics

import (
	"context"
	"sort"
	"time"

	"log/slog"

	"weblytics/internal/pkg/async"
	"weblytics/internal/timeframe"
)

// topServicesLimit bounds every ranking response.
const topServicesLimit = 5

// ServiceCount is one ranked entry: a tracked service identifier and its
// active-user count for the requested window.
type ServiceCount struct {
	Service string `json:"service"`
	Count   int64  `json:"count"`
}

// windowCount selects the count matching the interval kind. ok is false
// when the result carries no measurement for that window.
func windowCount(a ActiveUsers, iv timeframe.Interval) (int64, bool) {
	var m map[string]int64
	switch iv {
	case timeframe.IntervalWeekly:
		m = a.WAU
	case timeframe.IntervalMonthly:
		m = a.MAU
	default:
		m = a.DAU
	}
	for _, count := range m {
		return count, true
	}
	return 0, false
}

// TopServices queries active users for every registered service and ranks
// them by the window matching iv. The per-service queries are independent
// and fan out concurrently under a bounded timeout; a service that fails,
// times out or has no measurement is excluded rather than reported as
// zero. Ordering never depends on completion order: results are sorted by
// value, ties broken by registry order.
func TopServices(calc *ActiveUserCalculator, services []string, iv timeframe.Interval, timeout time.Duration, logger *slog.Logger) []ServiceCount {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tasks := make([]async.Task[ActiveUsers], len(services))
	for i, svc := range services {
		service := svc
		tasks[i] = async.Task[ActiveUsers]{
			Name: service,
			Execute: func() (ActiveUsers, error) {
				return calc.ActiveUsers(service)
			},
		}
	}

	pool := async.NewPool[ActiveUsers](len(services))
	results := pool.Execute(ctx, tasks)
	if len(results) < len(services) && ctx.Err() != nil {
		logger.Warn("ranking fan-out timed out, ranking partial results",
			slog.Duration("timeout", timeout),
			slog.Int("completed", len(results)))
	}

	// Registry order here; the stable sort below preserves it for ties.
	ranked := make([]ServiceCount, 0, len(services))
	for _, svc := range services {
		res, ok := results[svc]
		if !ok {
			continue
		}
		if res.Err != nil {
			logger.Warn("active-user query failed, excluding service from ranking",
				slog.String("service", svc),
				slog.Any("error", res.Err))
			continue
		}
		if !res.Data.Measured() {
			continue
		}
		if count, ok := windowCount(res.Data, iv); ok {
			ranked = append(ranked, ServiceCount{Service: svc, Count: count})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > topServicesLimit {
		ranked = ranked[:topServicesLimit]
	}
	return ranked
}
