package events

import (
	"log/slog"
	"time"

	"weblytics/internal/pkg/geoip"
	ua "weblytics/internal/pkg/user_agent"
)

// RawRequest is the transport-level input to enrichment: the client IP
// (first forwarded-for entry or peer address), the raw User-Agent header
// and the optional client-supplied session identifier.
type RawRequest struct {
	IPAddress string
	UserAgent string
	SessionID string
}

// Enricher turns raw request metadata into the canonical Visit record.
// Dependencies are injected at construction and held for the process
// lifetime.
type Enricher struct {
	geo    *geoip.Locator
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewEnricher builds an Enricher. now may be nil, in which case the system
// clock is used; tests inject a fixed clock.
func NewEnricher(geo *geoip.Locator, logger *slog.Logger, loc *time.Location, now func() time.Time) *Enricher {
	if now == nil {
		now = time.Now
	}
	return &Enricher{geo: geo, logger: logger, loc: loc, now: now}
}

// Enrich produces the canonical Visit for a raw request along with the
// parsed user agent (the parse happens exactly once per event; the noise
// filter reuses it). Geo failures resolve to the Unknown sentinel and
// never propagate.
func (e *Enricher) Enrich(req RawRequest) (Visit, ua.UserAgent) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	parsed := ua.Parse(req.UserAgent)
	location := e.geo.Locate(req.IPAddress)
	if location == geoip.UnknownLocation {
		e.logger.Debug("location unresolved",
			slog.String("ip", req.IPAddress))
	}

	return Visit{
		Timestamp: e.now().In(e.loc),
		SessionID: sessionID,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		IsMobile:  parsed.Mobile,
		IsDesktop: parsed.Desktop,
		Location:  location,
	}, parsed
}
