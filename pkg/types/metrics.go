package types

// Supported platform identifiers.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformTikTok    = "tiktok"
)

// validPlatforms is the set of recognized platform values.
var validPlatforms = map[string]bool{
	PlatformFacebook:  true,
	PlatformInstagram: true,
	PlatformLinkedIn:  true,
	PlatformTikTok:    true,
}

// ValidPlatform reports whether platform is a supported platform identifier.
func ValidPlatform(platform string) bool {
	return validPlatforms[platform]
}

// DateFormat is the layout for download dates and weekly cutoff dates.
// Dates are stored as text in this format so that lexicographic order is
// chronological order.
const DateFormat = "2006-01-02"

// SeriesKey identifies one time series of daily metric rows: all rows
// for the same post on the same page and platform.
type SeriesKey struct {
	Platform string
	PageID   string
	PostID   string
}

// MetricKey identifies a single daily metric row within a series.
type MetricKey struct {
	Platform     string
	PageID       string
	PostID       string
	DownloadDate string
}

// Series returns the series this key belongs to.
func (k MetricKey) Series() SeriesKey {
	return SeriesKey{Platform: k.Platform, PageID: k.PageID, PostID: k.PostID}
}

// DailyMetrics is one day's snapshot of a post's engagement counters,
// plus the day-over-day deltas for the six core metrics. Absolute
// counters are written by the ingesters; delta columns are owned by the
// delta calculator and recomputed after ingestion.
type DailyMetrics struct {
	Platform     string
	PageID       string
	PostID       string
	DownloadDate string

	Views       int64
	Reach       int64
	Impressions int64
	Reactions   int64
	Comments    int64
	Shares      int64
	Saves       int64

	LinkClicks int64
	CTR        *float64 // click-through rate in percent, nil when impressions are zero

	DeltaViews     int64
	DeltaReach     int64
	DeltaReactions int64
	DeltaComments  int64
	DeltaShares    int64
	DeltaSaves     int64
}

// Key returns the full row key.
func (m *DailyMetrics) Key() MetricKey {
	return MetricKey{
		Platform:     m.Platform,
		PageID:       m.PageID,
		PostID:       m.PostID,
		DownloadDate: m.DownloadDate,
	}
}

// Series returns the series key of this row.
func (m *DailyMetrics) Series() SeriesKey {
	return SeriesKey{Platform: m.Platform, PageID: m.PageID, PostID: m.PostID}
}
