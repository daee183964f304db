package events

import "time"

// Visit holds the enrichment fields shared by every stored event kind.
// Timestamp is assigned at ingestion, never taken from the client.
// IsMobile/IsDesktop are derived once from the device parser and frozen;
// the raw UserAgent is retained so OS and browser families can be
// re-derived at query time.
type Visit struct {
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	SessionID string    `gorm:"index;size:64;not null" json:"session_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	IsMobile  bool      `json:"is_mobile"`
	IsDesktop bool      `json:"is_desktop"`
	Location  string    `json:"location"` // "City, Country" or "Unknown"
}

// Pageview records a page visit.
type Pageview struct {
	ID          uint  `gorm:"primaryKey;autoIncrement"`
	Visit       Visit `gorm:"embedded"`
	URL         string `gorm:"index;not null" json:"url"`
	ReferrerURL string `json:"referrer_url"`
}

func (Pageview) TableName() string { return "pageviews" }

// AnchorClick records a link click from a source page to a target.
type AnchorClick struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	Visit     Visit `gorm:"embedded"`
	SourceURL string `gorm:"index;not null" json:"source_url"`
	TargetURL string `gorm:"index;not null" json:"target_url"`
	ClickType string `json:"click_type"`
}

func (AnchorClick) TableName() string { return "anchor_clicks" }

// QueryExecution records a query run in one of the tracked playgrounds.
// Contents is stored verbatim and never interpreted.
type QueryExecution struct {
	ID       uint  `gorm:"primaryKey;autoIncrement"`
	Visit    Visit `gorm:"embedded"`
	Contents string `json:"contents"`
}

func (QueryExecution) TableName() string { return "query_executions" }
