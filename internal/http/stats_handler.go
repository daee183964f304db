package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weblytics/internal/analytics"
	"weblytics/internal/config"
	"weblytics/internal/events"
	"weblytics/internal/timeframe"
)

// StatsHandler serves the reporting endpoints. Unlike ingestion these are
// strict: malformed parameters are a 400, storage failures a 500.
type StatsHandler struct {
	store  *events.Store
	calc   *analytics.ActiveUserCalculator
	cfg    *config.Config
	loc    *time.Location
	logger *slog.Logger
}

func NewStatsHandler(store *events.Store, calc *analytics.ActiveUserCalculator, cfg *config.Config, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		store:  store,
		calc:   calc,
		cfg:    cfg,
		loc:    cfg.Location(),
		logger: logger,
	}
}

// queryRange is the validated date_start/date_end/interval triple shared
// by the bucketed endpoints, reduced to its planned buckets.
type queryRange struct {
	interval timeframe.Interval
	buckets  []timeframe.Bucket
}

func (h *StatsHandler) parseRange(c *fiber.Ctx) (queryRange, error) {
	interval, err := timeframe.ParseInterval(c.Query("interval"))
	if err != nil {
		return queryRange{}, err
	}
	start, err := timeframe.ParseDate(c.Query("date_start"), h.loc)
	if err != nil {
		return queryRange{}, err
	}
	end, err := timeframe.ParseDate(c.Query("date_end"), h.loc)
	if err != nil {
		return queryRange{}, err
	}
	if end.Before(start) {
		return queryRange{}, fiber.NewError(http.StatusBadRequest, "date_end precedes date_start")
	}
	return queryRange{
		interval: interval,
		buckets:  timeframe.Plan(start, end, interval),
	}, nil
}

// queryStart and queryEnd span the planned buckets rather than the raw
// parameters: for weekly and monthly intervals the first bucket begins
// before date_start and the last ends after date_end, and events in
// those aligned margins belong to the series.
func (r queryRange) queryStart() time.Time {
	return r.buckets[0].Start
}

func (r queryRange) queryEnd() time.Time {
	return r.buckets[len(r.buckets)-1].End
}

// Pageviews handles GET /stats/pageviews.
func (h *StatsHandler) Pageviews(c *fiber.Ctx) error {
	return h.pageviewStats(c, "total_pageviews", false)
}

// UniqueVisitors handles GET /stats/unique-visitors. Identical to
// Pageviews except each session counts once per bucket.
func (h *StatsHandler) UniqueVisitors(c *fiber.Ctx) error {
	return h.pageviewStats(c, "total_unique_visitors", true)
}

func (h *StatsHandler) pageviewStats(c *fiber.Ctx, totalField string, dedupe bool) error {
	qr, err := h.parseRange(c)
	if err != nil {
		return badRequest(c, err)
	}

	rows, err := h.store.PageviewsBetween(qr.queryStart(), qr.queryEnd(), c.Query("url"))
	if err != nil {
		h.logger.Error("Failed to query pageviews", slog.Any("error", err))
		return storageError(c)
	}

	result := analytics.Aggregate(analytics.RecordsFromPageviews(rows), qr.buckets, analytics.Options{
		Interval:        qr.interval,
		DedupeBySession: dedupe,
	})

	return c.JSON(fiber.Map{
		totalField: result.Total,
		"data":     summaryViews(result.Buckets),
		"min":      result.Stats.Min,
		"max":      result.Stats.Max,
		"avg":      result.Stats.Avg,
	})
}

// AnchorClicks handles GET /stats/anchor-clicks. The url parameter (or
// source_url, for callers that spell it out) filters on the page the
// click happened on.
func (h *StatsHandler) AnchorClicks(c *fiber.Ctx) error {
	qr, err := h.parseRange(c)
	if err != nil {
		return badRequest(c, err)
	}

	sourceFilter := c.Query("source_url")
	if sourceFilter == "" {
		sourceFilter = c.Query("url")
	}

	rows, err := h.store.AnchorClicksBetween(qr.queryStart(), qr.queryEnd(), sourceFilter)
	if err != nil {
		h.logger.Error("Failed to query anchor clicks", slog.Any("error", err))
		return storageError(c)
	}

	result := analytics.AggregateClicks(analytics.RecordsFromAnchorClicks(rows), qr.buckets)

	return c.JSON(fiber.Map{
		"total_clicks": result.Total,
		"data":         clickViews(result.Buckets),
	})
}

// ActiveUsers handles GET /stats/active-users.
func (h *StatsHandler) ActiveUsers(c *fiber.Ctx) error {
	result, err := h.calc.ActiveUsers(c.Query("url"))
	if err != nil {
		h.logger.Error("Failed to compute active users", slog.Any("error", err))
		return storageError(c)
	}
	return c.JSON(result)
}

// TopServices handles GET /stats/top-services.
func (h *StatsHandler) TopServices(c *fiber.Ctx) error {
	interval, err := timeframe.ParseInterval(c.Query("interval"))
	if err != nil {
		return badRequest(c, err)
	}

	ranked := analytics.TopServices(h.calc, h.cfg.TrackedServices, interval, h.cfg.RankingTimeout(), h.logger)
	return c.JSON(fiber.Map{
		"interval": string(interval),
		"services": ranked,
	})
}

// summaryView is the wire shape of one bucket summary. Device classes are
// rendered as a display-cased map rather than the internal struct.
type summaryView struct {
	Total      int            `json:"total"`
	ByDevice   map[string]int `json:"by_device"`
	ByOS       map[string]int `json:"by_os"`
	ByBrowser  map[string]int `json:"by_browser"`
	ByReferrer map[string]int `json:"by_referrer"`
	ByRegion   map[string]int `json:"by_region"`
	ByCountry  map[string]int `json:"by_country"`
	ByHour     [24]int        `json:"by_hour"`
	ByWeekday  map[string]int `json:"by_weekday,omitempty"`
}

func summaryViews(buckets map[string]*analytics.Summary) map[string]summaryView {
	views := make(map[string]summaryView, len(buckets))
	for key, s := range buckets {
		views[key] = summaryView{
			Total:      s.Total,
			ByDevice:   deviceView(s.ByDevice),
			ByOS:       s.ByOS,
			ByBrowser:  s.ByBrowser,
			ByReferrer: s.ByReferrer,
			ByRegion:   s.ByRegion,
			ByCountry:  s.ByCountry,
			ByHour:     s.ByHour,
			ByWeekday:  s.ByWeekday,
		}
	}
	return views
}

type clickView struct {
	Total    int            `json:"total"`
	ByTarget map[string]int `json:"by_target"`
	ByType   map[string]int `json:"by_type"`
	ByDevice map[string]int `json:"by_device"`
}

func clickViews(buckets map[string]*analytics.ClickSummary) map[string]clickView {
	views := make(map[string]clickView, len(buckets))
	for key, s := range buckets {
		views[key] = clickView{
			Total:    s.Total,
			ByTarget: s.ByTarget,
			ByType:   s.ByType,
			ByDevice: deviceView(s.ByDevice),
		}
	}
	return views
}

func deviceView(d analytics.DeviceCounts) map[string]int {
	// Casers are stateful, so build one per call rather than sharing.
	caser := cases.Title(language.AmericanEnglish)
	return map[string]int{
		caser.String("mobile"):  d.Mobile,
		caser.String("desktop"): d.Desktop,
	}
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func storageError(c *fiber.Ctx) error {
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to query stored events",
	})
}
