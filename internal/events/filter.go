package events

import (
	"strings"

	ua "weblytics/internal/pkg/user_agent"
)

// Discard reasons, logged as structured data when an event is dropped.
const (
	DiscardLoopbackURL      = "loopback_url"
	DiscardSyntheticUA      = "synthetic_user_agent"
	DiscardSyntheticBrowser = "synthetic_browser"
)

// loopbackHosts and syntheticMarkers are matched by lowercase-folded
// substring containment, not exact match.
var (
	loopbackHosts    = []string{"127.0.0.1", "localhost"}
	syntheticMarkers = []string{"bot", "yeti", "headlesschrome"}
)

// DiscardReason decides whether an event is noise. eventURL is the
// pageview URL or the click's source URL; parsed is the already-parsed
// user agent. The empty reason with ok=false means the event is kept.
//
// Discarded events are still acknowledged with a success response; the
// decision only controls persistence.
func DiscardReason(eventURL, userAgent string, parsed ua.UserAgent) (string, bool) {
	urlLower := strings.ToLower(eventURL)
	for _, host := range loopbackHosts {
		if strings.Contains(urlLower, host) {
			return DiscardLoopbackURL, true
		}
	}

	uaLower := strings.ToLower(userAgent)
	for _, marker := range syntheticMarkers {
		if strings.Contains(uaLower, marker) {
			return DiscardSyntheticUA, true
		}
	}

	if parsed.Bot {
		return DiscardSyntheticBrowser, true
	}

	return "", false
}
