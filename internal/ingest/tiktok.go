package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ElizabethRoman12/Datax/internal/store"
	"github.com/ElizabethRoman12/Datax/internal/tiktok"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// TikTokConfig holds the parameters for a TikTok Business account
// ingestion.
type TikTokConfig struct {
	BusinessID string
	Since      time.Time // zero means January 1 of the current year
}

// TikTok ingests a TikTok Business account: videos since the cutoff with
// their lifetime counters snapshotted under the run date, weekly account
// statistics, and audience segments.
type TikTok struct {
	client     *tiktok.Client
	store      *store.Store
	businessID string
	since      time.Time
	log        zerolog.Logger

	warnings int
}

// NewTikTok creates a TikTok ingester.
func NewTikTok(client *tiktok.Client, st *store.Store, cfg TikTokConfig) *TikTok {
	since := cfg.Since
	if since.IsZero() {
		since = yearStart()
	}
	return &TikTok{
		client:     client,
		store:      st,
		businessID: cfg.BusinessID,
		since:      since,
		log:        log.With().Str("component", "ingest.tiktok").Logger(),
	}
}

// ttkVideo is the creative-listing item shape. Timestamps arrive as
// epoch seconds or ISO strings depending on the endpoint version.
type ttkVideo struct {
	CreativeID   flexString `json:"creative_id"`
	ID           flexString `json:"id"`
	CreateTime   flexString `json:"create_time"`
	PublishTime  flexString `json:"publish_time"`
	Caption      string     `json:"caption"`
	Title        string     `json:"title"`
	ShareURL     string     `json:"share_url"`
	LikeCount    int64      `json:"like_count"`
	CommentCount int64      `json:"comment_count"`
	ShareCount   int64      `json:"share_count"`
	ViewCount    int64      `json:"view_count"`
}

// ttkInsights is the per-creative lifetime insights shape.
type ttkInsights struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
	Saves    int64 `json:"saves"`
	Reach    int64 `json:"reach"`
}

// Run executes one full ingestion, recording it as an ingestion run.
func (tt *TikTok) Run(ctx context.Context) error {
	run, err := tt.store.BeginRun(ctx, types.PlatformTikTok)
	if err != nil {
		return err
	}
	tt.log.Info().Str("run_id", run.RunID).Str("business_id", tt.businessID).Msg("starting tiktok ingestion")

	err = tt.ingest(ctx)
	if finishErr := tt.store.FinishRun(ctx, run, err); finishErr != nil && err == nil {
		err = finishErr
	}
	if err != nil {
		tt.log.Error().Str("run_id", run.RunID).Err(err).Msg("tiktok ingestion failed")
		return err
	}
	tt.log.Info().Str("run_id", run.RunID).Msg("tiktok ingestion finished")
	return nil
}

func (tt *TikTok) ingest(ctx context.Context) error {
	if err := tt.store.UpsertPage(ctx, &types.Page{
		Platform: types.PlatformTikTok,
		PageID:   tt.businessID,
		Name:     tt.businessID,
	}); err != nil {
		return err
	}

	if err := tt.ingestVideos(ctx); err != nil {
		return err
	}
	if err := tt.ingestWeeklyStats(ctx); err != nil {
		return err
	}
	return tt.ingestAudienceSegments(ctx)
}

// ingestVideos walks the creative listing and snapshots each video's
// lifetime counters under today's date.
func (tt *TikTok) ingestVideos(ctx context.Context) error {
	today := time.Now().UTC().Format(types.DateFormat)
	params := map[string]string{
		"business_id": tt.businessID,
		"page_size":   "50",
	}

	return tt.client.Paginate(ctx, "/v1.3/content/creative/list/", params, "creatives", func(raw json.RawMessage) error {
		var v ttkVideo
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decoding creative: %w", err)
		}

		created := v.PublishTime.String()
		if created == "" {
			created = v.CreateTime.String()
		}
		if created == "" {
			return nil
		}
		publishedAt, err := parseFlexibleTime(created)
		if err != nil {
			return fmt.Errorf("creative %s: %w", v.id(), err)
		}
		if publishedAt.Before(tt.since) {
			return nil
		}
		return tt.ingestOne(ctx, &v, publishedAt, today)
	})
}

// id returns whichever identifier the listing populated.
func (v *ttkVideo) id() string {
	if v.CreativeID.String() != "" {
		return v.CreativeID.String()
	}
	return v.ID.String()
}

func (tt *TikTok) ingestOne(ctx context.Context, v *ttkVideo, publishedAt time.Time, today string) error {
	id := v.id()
	if id == "" {
		return nil
	}

	caption := v.Caption
	if caption == "" {
		caption = v.Title
	}
	post := &types.Post{
		Platform:    types.PlatformTikTok,
		PageID:      tt.businessID,
		PostID:      id,
		URL:         v.ShareURL,
		PublishedAt: publishedAt,
		Body:        caption,
		Format:      types.FormatVideo,
	}
	if err := tt.store.UpsertPost(ctx, post); err != nil {
		return err
	}

	ins := tt.videoInsights(ctx, id)

	metrics := &types.DailyMetrics{
		Platform:     types.PlatformTikTok,
		PageID:       tt.businessID,
		PostID:       id,
		DownloadDate: today,
		Views:        firstNonZero(v.ViewCount, ins.Views),
		Reach:        ins.Reach,
		Reactions:    firstNonZero(v.LikeCount, ins.Likes),
		Comments:     firstNonZero(v.CommentCount, ins.Comments),
		Shares:       firstNonZero(v.ShareCount, ins.Shares),
		Saves:        ins.Saves,
	}
	return tt.store.UpsertDailyMetrics(ctx, metrics)
}

// firstNonZero prefers the listing's lightweight counter and falls back
// to the insights value.
func firstNonZero(a, b int64) int64 {
	if a != 0 {
		return a
	}
	return b
}

// videoInsights fetches the lifetime metrics for one creative. Failures
// degrade to zeros; the listing counters remain as fallback.
func (tt *TikTok) videoInsights(ctx context.Context, creativeID string) ttkInsights {
	var out struct {
		Insights ttkInsights `json:"insights"`
	}
	err := tt.client.Get(ctx, "/v1.3/content/creative/insights/", map[string]string{
		"business_id": tt.businessID,
		"creative_id": creativeID,
	}, &out)
	if err != nil {
		tt.warn("creative insights unavailable", creativeID, err)
		return ttkInsights{}
	}
	return out.Insights
}

// ingestWeeklyStats reduces the daily account insights of the last four
// weeks to one weekly snapshot per ISO week. An unavailable account
// insights endpoint skips the snapshots with a warning.
func (tt *TikTok) ingestWeeklyStats(ctx context.Context) error {
	until := time.Now().UTC().Truncate(24 * time.Hour)
	since := until.Add(-28 * 24 * time.Hour)

	var out struct {
		Values []struct {
			EndTime flexString `json:"end_time"`
			Date    string     `json:"date"`
			Value   struct {
				Views        int64 `json:"views"`
				Followers    int64 `json:"followers"`
				ProfileViews int64 `json:"profile_views"`
			} `json:"value"`
		} `json:"values"`
	}
	err := tt.client.Get(ctx, "/v1.3/content/account/insights/", map[string]string{
		"business_id": tt.businessID,
		"period":      "day",
		"since":       fmt.Sprintf("%d", since.Unix()),
		"until":       fmt.Sprintf("%d", until.Unix()),
		"metrics":     "views,followers,profile_views",
	}, &out)
	if err != nil {
		tt.log.Warn().Err(err).Msg("account insights unavailable")
		return nil
	}

	type dayStats struct{ views, followers int64 }
	byDay := make(map[time.Time]dayStats)
	for _, row := range out.Values {
		stamp := row.EndTime.String()
		if stamp == "" {
			stamp = row.Date
		}
		if stamp == "" {
			continue
		}
		t, err := parseFlexibleTime(stamp)
		if err != nil {
			continue
		}
		byDay[t.Truncate(24*time.Hour)] = dayStats{views: row.Value.Views, followers: row.Value.Followers}
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	for _, cutoff := range weekCutoffs(days) {
		stats := byDay[cutoff]
		w := &types.WeeklyPageStats{
			Platform:   types.PlatformTikTok,
			PageID:     tt.businessID,
			WeekEnding: cutoff.Format(types.DateFormat),
			Followers:  stats.followers,
			PageViews:  stats.views,
		}
		if err := tt.store.UpsertWeeklyPageStats(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// ingestAudienceSegments records the demographic buckets the account
// audience endpoint exposes. An unavailable endpoint skips them with a
// warning.
func (tt *TikTok) ingestAudienceSegments(ctx context.Context) error {
	type bucket struct {
		Name  string `json:"name"`
		Count int64  `json:"count"`
	}
	var out struct {
		ByCity    []bucket `json:"by_city"`
		ByCountry []bucket `json:"by_country"`
		ByGender  []bucket `json:"by_gender"`
		ByAge     []bucket `json:"by_age"`
	}
	err := tt.client.Get(ctx, "/v1.3/content/account/audience/", map[string]string{
		"business_id": tt.businessID,
	}, &out)
	if err != nil {
		tt.log.Warn().Err(err).Msg("audience demographics unavailable")
		return nil
	}

	week := time.Now().UTC().Format(types.DateFormat)
	dimensions := []struct {
		dimension string
		buckets   []bucket
	}{
		{types.SegmentCity, out.ByCity},
		{types.SegmentCountry, out.ByCountry},
		{types.SegmentGender, out.ByGender},
		{types.SegmentAge, out.ByAge},
	}
	for _, d := range dimensions {
		for _, b := range d.buckets {
			if b.Name == "" {
				continue
			}
			segment := b.Name
			if d.dimension == types.SegmentCountry {
				segment = strings.ToUpper(segment)
			}
			seg := &types.FollowerSegment{
				Platform:   types.PlatformTikTok,
				PageID:     tt.businessID,
				WeekEnding: week,
				Dimension:  d.dimension,
				Segment:    segment,
				Followers:  b.Count,
			}
			if err := tt.store.InsertFollowerSegment(ctx, seg); err != nil {
				return err
			}
		}
	}
	return nil
}

// warn logs up to maxMediaWarnings insight warnings per run.
func (tt *TikTok) warn(msg, creativeID string, err error) {
	tt.warnings++
	if tt.warnings <= maxMediaWarnings {
		tt.log.Warn().Str("creative_id", creativeID).Err(err).Msg(msg)
	}
}
