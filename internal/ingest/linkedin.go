package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ElizabethRoman12/Datax/internal/linkedin"
	"github.com/ElizabethRoman12/Datax/internal/store"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// LinkedInConfig holds the parameters for a LinkedIn organization
// ingestion. OrgID is the bare numeric organization ID.
type LinkedInConfig struct {
	OrgID string
	Since time.Time // zero means January 1 of the current year
}

// accountStatsWindow is how far back the daily follower statistics query
// reaches before being reduced to weekly snapshots.
const accountStatsWindow = 60 * 24 * time.Hour

// LinkedIn ingests a LinkedIn organization: posts since the cutoff with
// their social counts snapshotted under the run date, weekly follower
// statistics, and country audience segments.
type LinkedIn struct {
	client *linkedin.Client
	store  *store.Store
	orgURN string
	since  time.Time
	log    zerolog.Logger
}

// NewLinkedIn creates a LinkedIn ingester.
func NewLinkedIn(client *linkedin.Client, st *store.Store, cfg LinkedInConfig) *LinkedIn {
	since := cfg.Since
	if since.IsZero() {
		since = yearStart()
	}
	return &LinkedIn{
		client: client,
		store:  st,
		orgURN: "urn:li:organization:" + cfg.OrgID,
		since:  since,
		log:    log.With().Str("component", "ingest.linkedin").Logger(),
	}
}

// liPost is the current posts-endpoint item shape.
type liPost struct {
	URN       string `json:"urn"`
	ID        string `json:"id"`
	CreatedAt struct {
		Time int64 `json:"time"`
	} `json:"createdAt"`
	LastModifiedAt struct {
		Time int64 `json:"time"`
	} `json:"lastModifiedAt"`
	Commentary struct {
		Text string `json:"text"`
	} `json:"commentary"`
	Content struct {
		Media struct {
			Type string `json:"type"`
		} `json:"media"`
	} `json:"content"`
	AssociatedURN string `json:"associatedUrn"`
	Activity      string `json:"activity"`
}

// liShare is the legacy shares-endpoint item shape.
type liShare struct {
	URN     string     `json:"urn"`
	ID      flexString `json:"id"`
	Created struct {
		Time int64 `json:"time"`
	} `json:"created"`
	LastModified struct {
		Time int64 `json:"time"`
	} `json:"lastModified"`
	Text struct {
		Text string `json:"text"`
	} `json:"text"`
	Permalink string `json:"permalink"`
	Activity  string `json:"activity"`
}

// liSocialCounts is the socialActions response shape.
type liSocialCounts struct {
	LikesSummary struct {
		TotalLikes int64 `json:"totalLikes"`
	} `json:"likesSummary"`
	CommentsSummary struct {
		TotalFirstLevelComments int64 `json:"totalFirstLevelComments"`
	} `json:"commentsSummary"`
	Shares int64 `json:"shares"`
}

// liFollowerElement is one element of an organizationFollowerStatistics
// response, covering both the plain and the by-country aggregations.
type liFollowerElement struct {
	TimeRange struct {
		End int64 `json:"end"`
	} `json:"timeRange"`
	FollowerCounts struct {
		OrganicFollowerCount *int64 `json:"organicFollowerCount"`
	} `json:"followerCounts"`
	FollowerGains struct {
		OrganicFollowerGain int64 `json:"organicFollowerGain"`
	} `json:"followerGains"`
	ByCountry struct {
		Country       string `json:"country"`
		FollowerCount int64  `json:"followerCount"`
	} `json:"followerCountsByCountry"`
}

// Run executes one full ingestion, recording it as an ingestion run.
func (li *LinkedIn) Run(ctx context.Context) error {
	run, err := li.store.BeginRun(ctx, types.PlatformLinkedIn)
	if err != nil {
		return err
	}
	li.log.Info().Str("run_id", run.RunID).Str("org", li.orgURN).Msg("starting linkedin ingestion")

	err = li.ingest(ctx)
	if finishErr := li.store.FinishRun(ctx, run, err); finishErr != nil && err == nil {
		err = finishErr
	}
	if err != nil {
		li.log.Error().Str("run_id", run.RunID).Err(err).Msg("linkedin ingestion failed")
		return err
	}
	li.log.Info().Str("run_id", run.RunID).Msg("linkedin ingestion finished")
	return nil
}

func (li *LinkedIn) ingest(ctx context.Context) error {
	if err := li.store.UpsertPage(ctx, &types.Page{
		Platform: types.PlatformLinkedIn,
		PageID:   li.orgURN,
		Name:     li.orgURN,
	}); err != nil {
		return err
	}

	// Post listing needs a Community Management token; a token scoped to
	// followers and audience only still gets the rest of the run.
	if err := li.ingestPosts(ctx); err != nil {
		if !isPermissionError(err) {
			return err
		}
		li.log.Warn().Err(err).Msg("post listing not permitted, continuing with account stats")
	}

	if err := li.ingestWeeklyFollowers(ctx); err != nil {
		return err
	}
	return li.ingestAudienceSegments(ctx)
}

// isPermissionError reports whether err looks like a token-scope
// rejection rather than a transport or data failure.
func isPermissionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "ACCESS_DENIED") || strings.Contains(msg, "permissions")
}

// ingestPosts walks the posts listing, falling back to the legacy shares
// endpoint for tokens predating the posts API.
func (li *LinkedIn) ingestPosts(ctx context.Context) error {
	params := map[string]string{
		"q":      "author",
		"author": li.orgURN,
		"sort":   "LAST_MODIFIED",
	}
	err := li.client.Paginate(ctx, "/posts", params, 50, func(raw json.RawMessage) error {
		var p liPost
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("decoding post: %w", err)
		}
		return li.ingestPost(ctx, postFromCurrent(&p))
	})
	if err == nil || isPermissionError(err) {
		return err
	}

	li.log.Warn().Err(err).Msg("posts endpoint unavailable, falling back to shares")
	params = map[string]string{
		"q":      "owners",
		"owners": "List(" + li.orgURN + ")",
		"sort":   "LAST_MODIFIED",
	}
	return li.client.Paginate(ctx, "/shares", params, 50, func(raw json.RawMessage) error {
		var s liShare
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decoding share: %w", err)
		}
		return li.ingestPost(ctx, postFromShare(&s))
	})
}

// liNormalPost is a post normalized from either listing shape.
type liNormalPost struct {
	id          string
	createdMS   int64
	text        string
	permalink   string
	mediaType   string
	activityURN string
}

func postFromCurrent(p *liPost) *liNormalPost {
	createdMS := p.CreatedAt.Time
	if createdMS == 0 {
		createdMS = p.LastModifiedAt.Time
	}
	id := p.URN
	if id == "" {
		id = p.ID
	}
	activity := p.AssociatedURN
	if activity == "" {
		activity = p.Activity
	}
	if activity == "" {
		activity = p.URN
	}
	return &liNormalPost{
		id:          id,
		createdMS:   createdMS,
		text:        p.Commentary.Text,
		mediaType:   p.Content.Media.Type,
		activityURN: activity,
	}
}

func postFromShare(s *liShare) *liNormalPost {
	createdMS := s.Created.Time
	if createdMS == 0 {
		createdMS = s.LastModified.Time
	}
	id := s.URN
	if id == "" {
		id = s.ID.String()
	}
	activity := s.Activity
	if activity == "" && s.ID.String() != "" {
		activity = "urn:li:activity:" + s.ID.String()
	}
	return &liNormalPost{
		id:          id,
		createdMS:   createdMS,
		text:        s.Text.Text,
		permalink:   s.Permalink,
		activityURN: activity,
	}
}

// ingestPost upserts one post and snapshots its social counts under the
// run date.
func (li *LinkedIn) ingestPost(ctx context.Context, p *liNormalPost) error {
	if p.id == "" || p.createdMS == 0 {
		return nil
	}
	publishedAt := time.UnixMilli(p.createdMS).UTC()
	if publishedAt.Before(li.since) {
		return nil
	}

	post := &types.Post{
		Platform:    types.PlatformLinkedIn,
		PageID:      li.orgURN,
		PostID:      p.id,
		URL:         p.permalink,
		PublishedAt: publishedAt,
		Body:        p.text,
		Format:      formatFromLinkedInMedia(p.mediaType),
	}
	if err := li.store.UpsertPost(ctx, post); err != nil {
		return err
	}

	counts := li.socialCounts(ctx, p.activityURN)
	metrics := &types.DailyMetrics{
		Platform:     types.PlatformLinkedIn,
		PageID:       li.orgURN,
		PostID:       p.id,
		DownloadDate: time.Now().UTC().Format(types.DateFormat),
		Reactions:    counts.LikesSummary.TotalLikes,
		Comments:     counts.CommentsSummary.TotalFirstLevelComments,
		Shares:       counts.Shares,
	}
	return li.store.UpsertDailyMetrics(ctx, metrics)
}

// socialCounts fetches likes/comments/shares for an activity. Failures
// degrade to zeros; not every post resolves to a readable activity.
func (li *LinkedIn) socialCounts(ctx context.Context, activityURN string) liSocialCounts {
	var counts liSocialCounts
	if activityURN == "" {
		return counts
	}

	encoded := strings.ReplaceAll(activityURN, ":", "%3A")
	if err := li.client.Get(ctx, "/socialActions/"+encoded, nil, &counts); err != nil {
		li.log.Warn().Str("activity", activityURN).Err(err).Msg("social counts unavailable")
		return liSocialCounts{}
	}
	return counts
}

// ingestWeeklyFollowers reduces the daily follower statistics of the
// last 60 days to one weekly snapshot per ISO week.
func (li *LinkedIn) ingestWeeklyFollowers(ctx context.Context) error {
	elements, err := li.followerStatistics(ctx, nil)
	if err != nil {
		return err
	}

	byDay := make(map[time.Time]int64)
	for _, e := range elements {
		if e.TimeRange.End == 0 {
			continue
		}
		day := time.UnixMilli(e.TimeRange.End).UTC().Truncate(24 * time.Hour)
		if e.FollowerCounts.OrganicFollowerCount != nil {
			byDay[day] = *e.FollowerCounts.OrganicFollowerCount
		} else {
			byDay[day] = e.FollowerGains.OrganicFollowerGain
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	for _, cutoff := range weekCutoffs(days) {
		w := &types.WeeklyPageStats{
			Platform:   types.PlatformLinkedIn,
			PageID:     li.orgURN,
			WeekEnding: cutoff.Format(types.DateFormat),
			Followers:  byDay[cutoff],
		}
		if err := li.store.UpsertWeeklyPageStats(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// ingestAudienceSegments records the latest follower count per country.
func (li *LinkedIn) ingestAudienceSegments(ctx context.Context) error {
	elements, err := li.followerStatistics(ctx, map[string]string{"aggregation": "COUNTRY"})
	if err != nil {
		li.log.Warn().Err(err).Msg("country audience unavailable")
		return nil
	}

	type latest struct {
		day   time.Time
		count int64
	}
	byCountry := make(map[string]latest)
	for _, e := range elements {
		if e.ByCountry.Country == "" || e.TimeRange.End == 0 {
			continue
		}
		day := time.UnixMilli(e.TimeRange.End).UTC()
		cur, ok := byCountry[e.ByCountry.Country]
		if !ok || !day.Before(cur.day) {
			byCountry[e.ByCountry.Country] = latest{day: day, count: e.ByCountry.FollowerCount}
		}
	}

	week := time.Now().UTC().Format(types.DateFormat)
	for country, l := range byCountry {
		seg := &types.FollowerSegment{
			Platform:   types.PlatformLinkedIn,
			PageID:     li.orgURN,
			WeekEnding: week,
			Dimension:  types.SegmentCountry,
			Segment:    strings.ToUpper(country),
			Followers:  l.count,
		}
		if err := li.store.InsertFollowerSegment(ctx, seg); err != nil {
			return err
		}
	}
	return nil
}

// followerStatistics queries organizationFollowerStatistics with day
// granularity over the account stats window.
func (li *LinkedIn) followerStatistics(ctx context.Context, extra map[string]string) ([]liFollowerElement, error) {
	end := time.Now().UTC()
	start := end.Add(-accountStatsWindow)

	params := map[string]string{
		"q":                                 "organizationalEntity",
		"organizationalEntity":              li.orgURN,
		"timeIntervals.timeGranularityType": "DAY",
		"timeIntervals.timeRange.start":     fmt.Sprintf("%d", start.UnixMilli()),
		"timeIntervals.timeRange.end":       fmt.Sprintf("%d", end.UnixMilli()),
	}
	for k, v := range extra {
		params[k] = v
	}

	var resp struct {
		Elements []liFollowerElement `json:"elements"`
	}
	if err := li.client.Get(ctx, "/organizationFollowerStatistics", params, &resp); err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

// formatFromLinkedInMedia maps the post media type to a post format.
func formatFromLinkedInMedia(mediaType string) string {
	switch strings.ToUpper(mediaType) {
	case "VIDEO":
		return types.FormatVideo
	case "IMAGE":
		return types.FormatImage
	case "CAROUSEL":
		return types.FormatCarousel
	case "ARTICLE":
		return types.FormatLink
	default:
		return types.FormatUnknown
	}
}
