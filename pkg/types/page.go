package types

import "time"

// Page is a social-media page or account that posts are attached to.
type Page struct {
	Platform string
	PageID   string
	Name     string
}

// Post formats inferred from the platform's media metadata.
const (
	FormatVideo    = "video"
	FormatImage    = "image"
	FormatCarousel = "carousel"
	FormatLink     = "link"
	FormatUnknown  = "unknown"
)

// Post is a single publication on a page.
type Post struct {
	Platform    string
	PageID      string
	PostID      string
	URL         string
	PublishedAt time.Time
	Body        string
	Format      string
}

// WeeklyPageStats is a weekly page-level snapshot: follower count, page
// reach, and page views as of the week's cutoff date.
type WeeklyPageStats struct {
	Platform   string
	PageID     string
	WeekEnding string // DateFormat
	Followers  int64
	PageReach  int64
	PageViews  int64
}

// Audience segmentation dimensions.
const (
	SegmentGender  = "gender"
	SegmentCountry = "country"
	SegmentCity    = "city"
	SegmentAge     = "age"
)

// FollowerSegment is one slice of a page's audience for one week:
// how many followers fall into a segment of a dimension (for example
// dimension "country", segment "MX").
type FollowerSegment struct {
	Platform   string
	PageID     string
	WeekEnding string // DateFormat
	Dimension  string
	Segment    string
	Followers  int64
}
