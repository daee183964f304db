// Package referrers maps raw referrer URLs to display labels for the
// by-referrer breakdown in pageview summaries.
package referrers

import (
	"net/url"
	"strings"
)

// DirectLabel is reported when a pageview carried no referrer at all.
const DirectLabel = "Direct"

// Referrer hostnames mapped to friendly display names. Korean portals
// and search engines first, since that is where most tracked traffic
// originates.
var knownReferrers = map[string]string{
	// Korean search and portals
	"naver.com":          "Naver",
	"search.naver.com":   "Naver",
	"m.search.naver.com": "Naver",
	"daum.net":           "Daum",
	"search.daum.net":    "Daum",
	"kakao.com":          "Kakao",

	// Global search engines
	"google.com":     "Google",
	"google.co.kr":   "Google",
	"google.co.jp":   "Google",
	"bing.com":       "Bing",
	"duckduckgo.com": "DuckDuckGo",
	"yahoo.com":      "Yahoo",
	"baidu.com":      "Baidu",

	// Social and messaging
	"x.com":           "X/Twitter",
	"twitter.com":     "X/Twitter",
	"t.co":            "X/Twitter",
	"facebook.com":    "Facebook",
	"l.facebook.com":  "Facebook",
	"instagram.com":   "Instagram",
	"l.instagram.com": "Instagram",
	"linkedin.com":    "LinkedIn",
	"youtube.com":     "YouTube",
	"youtu.be":        "YouTube",
	"discord.com":     "Discord",
	"open.kakao.com":  "KakaoTalk",
	"t.me":            "Telegram",
	"slack.com":       "Slack",

	// Developer communities
	"github.com":           "GitHub",
	"stackoverflow.com":    "Stack Overflow",
	"news.ycombinator.com": "Hacker News",
	"velog.io":             "Velog",
	"tistory.com":          "Tistory",
	"okky.kr":              "OKKY",
	"inflearn.com":         "Inflearn",
	"dev.to":               "DEV Community",
	"medium.com":           "Medium",
}

// Label resolves a raw referrer URL to a display name. An empty referrer
// is Direct; an unrecognized one is reported by its bare hostname.
func Label(referrerURL string) string {
	if referrerURL == "" {
		return DirectLabel
	}

	parsed, err := url.Parse(referrerURL)
	if err != nil || parsed.Hostname() == "" {
		// Some tracking snippets send a bare hostname instead of a URL.
		return labelForHost(referrerURL)
	}
	return labelForHost(parsed.Hostname())
}

func labelForHost(hostname string) string {
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if hostname == "" {
		return DirectLabel
	}

	if name, ok := knownReferrers[hostname]; ok {
		return name
	}
	trimmed := strings.TrimPrefix(hostname, "www.")
	if name, ok := knownReferrers[trimmed]; ok {
		return name
	}
	return trimmed
}
