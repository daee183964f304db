package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weblytics/internal/events"
	"weblytics/internal/pkg/geoip"
	ua "weblytics/internal/pkg/user_agent"
	"weblytics/internal/testsupport"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestNewSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := events.NewSessionID()
		assert.Len(t, id, 22) // 16 bytes, unpadded base64url
		assert.NotContains(t, id, "+")
		assert.NotContains(t, id, "/")
		assert.NotContains(t, id, "=")
		assert.False(t, seen[id], "session ids must not repeat")
		seen[id] = true
	}
}

func TestEnrichGeneratesSessionWhenAbsent(t *testing.T) {
	logger := testsupport.SilentLogger()
	geo := geoip.Open("", logger)
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	enricher := events.NewEnricher(geo, logger, loc, func() time.Time { return fixed })

	visit, parsed := enricher.Enrich(events.RawRequest{
		IPAddress: "203.0.113.9",
		UserAgent: chromeUA,
	})

	assert.NotEmpty(t, visit.SessionID)
	assert.Equal(t, fixed.In(loc), visit.Timestamp)
	assert.Equal(t, "Asia/Seoul", visit.Timestamp.Location().String())
	assert.Equal(t, geoip.UnknownLocation, visit.Location)
	assert.True(t, visit.IsDesktop)
	assert.False(t, visit.IsMobile)
	assert.Equal(t, "Chrome", parsed.Browser)
}

func TestEnrichReusesSuppliedSession(t *testing.T) {
	logger := testsupport.SilentLogger()
	enricher := events.NewEnricher(geoip.Open("", logger), logger, time.UTC, nil)

	visit, _ := enricher.Enrich(events.RawRequest{
		IPAddress: "203.0.113.9",
		UserAgent: chromeUA,
		SessionID: "existing-session",
	})
	assert.Equal(t, "existing-session", visit.SessionID)
}

func TestDiscardReason(t *testing.T) {
	testCases := []struct {
		name      string
		url       string
		userAgent string
		expected  string
		discard   bool
	}{
		{
			name:      "clean event kept",
			url:       "https://books.weniv.co.kr/python",
			userAgent: chromeUA,
		},
		{
			name:      "loopback address in url",
			url:       "http://127.0.0.1:8000/test",
			userAgent: chromeUA,
			expected:  events.DiscardLoopbackURL,
			discard:   true,
		},
		{
			name:      "localhost in url",
			url:       "http://LOCALHOST:3000/",
			userAgent: chromeUA,
			expected:  events.DiscardLoopbackURL,
			discard:   true,
		},
		{
			name:      "googlebot user agent",
			url:       "https://books.weniv.co.kr/",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			expected:  events.DiscardSyntheticUA,
			discard:   true,
		},
		{
			name:      "naver yeti crawler",
			url:       "https://books.weniv.co.kr/",
			userAgent: "Mozilla/5.0 (compatible; Yeti/1.1; +https://naver.me/spd)",
			expected:  events.DiscardSyntheticUA,
			discard:   true,
		},
		{
			name:      "headless chrome",
			url:       "https://books.weniv.co.kr/",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64) HeadlessChrome/118.0.0.0 Safari/537.36",
			expected:  events.DiscardSyntheticUA,
			discard:   true,
		},
		{
			name:      "marker match is case insensitive",
			url:       "https://books.weniv.co.kr/",
			userAgent: "My Fancy GoogleBOT scanner",
			expected:  events.DiscardSyntheticUA,
			discard:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reason, discard := events.DiscardReason(tc.url, tc.userAgent, ua.Parse(tc.userAgent))
			assert.Equal(t, tc.discard, discard)
			assert.Equal(t, tc.expected, reason)
		})
	}
}

func TestDiscardReasonSyntheticBrowser(t *testing.T) {
	// A synthetic client flagged by the parser but carrying none of the
	// raw substring markers.
	parsed := ua.UserAgent{Browser: "HTTP Library", Bot: true}
	reason, discard := events.DiscardReason("https://books.weniv.co.kr/", "curl/8.4.0", parsed)
	assert.True(t, discard)
	assert.Equal(t, events.DiscardSyntheticBrowser, reason)
}

func TestStoreAppendAndQueryPageviews(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := events.NewStore(db, testsupport.SilentLogger())

	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	urls := []string{
		"https://books.weniv.co.kr/python",
		"https://sql.weniv.co.kr/",
		"https://books.weniv.co.kr/js",
	}
	for i, url := range urls {
		require.NoError(t, store.AppendPageview(&events.Pageview{
			Visit: events.Visit{
				Timestamp: base.Add(time.Duration(i) * time.Minute),
				SessionID: "s1",
				UserAgent: chromeUA,
				IsDesktop: true,
				Location:  "Seoul, South Korea",
			},
			URL: url,
		}))
	}

	all, err := store.PageviewsBetween(base, base.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	books, err := store.PageviewsBetween(base, base.Add(time.Hour), "books.weniv")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, urls[0], books[0].URL)
	assert.Equal(t, urls[2], books[1].URL)

	// Interval membership is half-open: an event exactly at the upper
	// bound is excluded.
	none, err := store.PageviewsBetween(base.Add(-time.Hour), base, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreDistinctPageviewSessions(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := events.NewStore(db, testsupport.SilentLogger())

	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for i, session := range []string{"a", "a", "b", "c", "b"} {
		require.NoError(t, store.AppendPageview(&events.Pageview{
			Visit: events.Visit{
				Timestamp: base.Add(time.Duration(i) * time.Hour),
				SessionID: session,
			},
			URL: "https://books.weniv.co.kr/",
		}))
	}

	count, err := store.DistinctPageviewSessions(base, base.AddDate(0, 0, 1), "books.weniv")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = store.DistinctPageviewSessions(base, base.AddDate(0, 0, 1), "no-such-service")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStoreAppendAnchorClickAndQueryExecution(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := events.NewStore(db, testsupport.SilentLogger())

	ts := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendAnchorClick(&events.AnchorClick{
		Visit:     events.Visit{Timestamp: ts, SessionID: "s1"},
		SourceURL: "https://books.weniv.co.kr/python",
		TargetURL: "https://sql.weniv.co.kr/",
		ClickType: "external",
	}))
	require.NoError(t, store.AppendQueryExecution(&events.QueryExecution{
		Visit:    events.Visit{Timestamp: ts, SessionID: "s1"},
		Contents: "SELECT * FROM users;",
	}))

	clicks, err := store.AnchorClicksBetween(ts.Add(-time.Minute), ts.Add(time.Minute), "books.weniv")
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "https://sql.weniv.co.kr/", clicks[0].TargetURL)
}
