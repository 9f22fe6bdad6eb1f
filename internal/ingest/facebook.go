package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ElizabethRoman12/Datax/internal/graph"
	"github.com/ElizabethRoman12/Datax/internal/store"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// FacebookConfig holds the parameters for a Facebook page ingestion.
type FacebookConfig struct {
	PageID string
	Since  time.Time // zero means January 1 of the current year
}

// Facebook ingests a Facebook page: page identity, posts since the
// cutoff, per-day post insights, reaction breakdowns, weekly page
// statistics, and audience segmentation.
type Facebook struct {
	client *graph.Client
	store  *store.Store
	pageID string
	since  time.Time
	log    zerolog.Logger
}

// NewFacebook creates a Facebook ingester.
func NewFacebook(client *graph.Client, st *store.Store, cfg FacebookConfig) *Facebook {
	since := cfg.Since
	if since.IsZero() {
		since = yearStart()
	}
	return &Facebook{
		client: client,
		store:  st,
		pageID: cfg.PageID,
		since:  since,
		log:    log.With().Str("component", "ingest.facebook").Logger(),
	}
}

// postFields is the field selection for the posts listing.
const postFields = "id,created_time,message,permalink_url,status_type," +
	"attachments{media_type}," +
	"shares,comments.summary(true).limit(0),reactions.summary(true).limit(0)"

// fbPost is the posts-listing item shape.
type fbPost struct {
	ID           string `json:"id"`
	CreatedTime  string `json:"created_time"`
	Message      string `json:"message"`
	PermalinkURL string `json:"permalink_url"`
	StatusType   string `json:"status_type"`
	Attachments  struct {
		Data []struct {
			MediaType string `json:"media_type"`
		} `json:"data"`
	} `json:"attachments"`
	Shares struct {
		Count int64 `json:"count"`
	} `json:"shares"`
	Comments struct {
		Summary struct {
			TotalCount int64 `json:"total_count"`
		} `json:"summary"`
	} `json:"comments"`
	Reactions struct {
		Summary struct {
			TotalCount int64 `json:"total_count"`
		} `json:"summary"`
	} `json:"reactions"`
}

// reactionAPINames maps internal reaction types to the Graph API's
// breakdown type parameter.
var reactionAPINames = map[string]string{
	types.ReactionLike:  "LIKE",
	types.ReactionLove:  "LOVE",
	types.ReactionHaha:  "HAHA",
	types.ReactionWow:   "WOW",
	types.ReactionSad:   "SAD",
	types.ReactionAngry: "ANGRY",
}

// Run executes one full ingestion, recording it as an ingestion run.
func (f *Facebook) Run(ctx context.Context) error {
	run, err := f.store.BeginRun(ctx, types.PlatformFacebook)
	if err != nil {
		return err
	}
	f.log.Info().Str("run_id", run.RunID).Str("page_id", f.pageID).Msg("starting facebook ingestion")

	err = f.ingest(ctx)
	if finishErr := f.store.FinishRun(ctx, run, err); finishErr != nil && err == nil {
		err = finishErr
	}
	if err != nil {
		f.log.Error().Str("run_id", run.RunID).Err(err).Msg("facebook ingestion failed")
		return err
	}
	f.log.Info().Str("run_id", run.RunID).Msg("facebook ingestion finished")
	return nil
}

func (f *Facebook) ingest(ctx context.Context) error {
	if err := f.ingestPage(ctx); err != nil {
		return err
	}
	if err := f.ingestPosts(ctx); err != nil {
		return err
	}
	if err := f.ingestWeeklyStats(ctx); err != nil {
		return err
	}
	if err := f.ingestAudienceSegments(ctx); err != nil {
		return err
	}
	// Reaction totals come from the breakdown detail rows; recompute them
	// now that all detail rows for this run are written.
	if _, err := f.store.RefreshReactionTotals(ctx); err != nil {
		return err
	}
	return nil
}

// ingestPage upserts the page row before anything references it.
func (f *Facebook) ingestPage(ctx context.Context) error {
	var js struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := f.client.Get(ctx, f.pageID, map[string]string{"fields": "id,name"}, &js); err != nil {
		return err
	}
	return f.store.UpsertPage(ctx, &types.Page{
		Platform: types.PlatformFacebook,
		PageID:   js.ID,
		Name:     js.Name,
	})
}

// ingestPosts walks the posts listing and writes posts, daily metric
// rows, and reaction detail rows.
func (f *Facebook) ingestPosts(ctx context.Context) error {
	params := map[string]string{
		"fields": postFields,
		"since":  f.since.Format(types.DateFormat),
	}
	return f.client.Paginate(ctx, f.pageID+"/posts", params, func(raw json.RawMessage) error {
		var p fbPost
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("decoding post: %w", err)
		}
		return f.ingestPost(ctx, &p)
	})
}

func (f *Facebook) ingestPost(ctx context.Context, p *fbPost) error {
	publishedAt, err := graph.ParseTime(p.CreatedTime)
	if err != nil {
		return fmt.Errorf("post %s: %w", p.ID, err)
	}

	post := &types.Post{
		Platform:    types.PlatformFacebook,
		PageID:      f.pageID,
		PostID:      p.ID,
		URL:         p.PermalinkURL,
		PublishedAt: publishedAt,
		Body:        p.Message,
		Format:      inferFormat(p),
	}
	if err := f.store.UpsertPost(ctx, post); err != nil {
		return err
	}

	breakdown := f.reactionBreakdown(ctx, p.ID)

	days, err := f.dailyInsights(ctx, p.ID)
	if err != nil {
		return err
	}

	for _, date := range sortedDates(days) {
		vals := days[date]
		impressions := vals["impressions"]
		clicks := vals["clicks"]

		m := &types.DailyMetrics{
			Platform:     types.PlatformFacebook,
			PageID:       f.pageID,
			PostID:       p.ID,
			DownloadDate: date,
			Views:        vals["video_views"],
			Reach:        vals["reach"],
			Impressions:  impressions,
			Reactions:    p.Reactions.Summary.TotalCount,
			Comments:     p.Comments.Summary.TotalCount,
			Shares:       p.Shares.Count,
			LinkClicks:   clicks,
		}
		if impressions > 0 {
			ctr := float64(clicks) / float64(impressions) * 100
			m.CTR = &ctr
		}
		if err := f.store.UpsertDailyMetrics(ctx, m); err != nil {
			return err
		}

		for typ, count := range breakdown {
			rc := &types.ReactionCount{
				Platform:     types.PlatformFacebook,
				PageID:       f.pageID,
				PostID:       p.ID,
				DownloadDate: date,
				ReactionType: typ,
				Count:        count,
			}
			if err := f.store.UpsertReactionCount(ctx, rc); err != nil {
				return err
			}
		}
	}
	return nil
}

// reactionBreakdown fetches the per-type reaction counts for a post.
// An unavailable breakdown degrades to zeros with a warning; some page
// tokens cannot read reaction summaries.
func (f *Facebook) reactionBreakdown(ctx context.Context, postID string) map[string]int64 {
	out := make(map[string]int64, len(types.ReactionTypes))
	for _, typ := range types.ReactionTypes {
		var js struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		}
		err := f.client.Get(ctx, postID+"/reactions", map[string]string{
			"type":    reactionAPINames[typ],
			"summary": "total_count",
			"limit":   "0",
		}, &js)
		if err != nil {
			f.log.Warn().Str("post_id", postID).Str("reaction", typ).Err(err).
				Msg("reaction breakdown unavailable")
			out[typ] = 0
			continue
		}
		out[typ] = js.Summary.TotalCount
	}
	return out
}

// dailyInsights fetches the per-day insight metrics for one post.
func (f *Facebook) dailyInsights(ctx context.Context, postID string) (map[string]map[string]int64, error) {
	mapping := map[string]string{
		"post_impressions":        "impressions",
		"post_impressions_unique": "reach",
		"post_clicks":             "clicks",
		"post_video_views":        "video_views",
	}
	metrics := make([]string, 0, len(mapping))
	for m := range mapping {
		metrics = append(metrics, m)
	}

	var resp graph.InsightsResponse
	err := f.client.Get(ctx, postID+"/insights", map[string]string{
		"metric": strings.Join(metrics, ","),
		"period": "day",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return parseInsightDays(resp, mapping)
}

// ingestWeeklyStats writes the weekly page snapshots.
func (f *Facebook) ingestWeeklyStats(ctx context.Context) error {
	mapping := map[string]string{
		"page_impressions":        "page_views",
		"page_impressions_unique": "page_reach",
		"page_fans":               "followers",
	}

	var resp graph.InsightsResponse
	err := f.client.Get(ctx, f.pageID+"/insights", map[string]string{
		"metric": "page_impressions,page_impressions_unique,page_fans",
		"period": "week",
	}, &resp)
	if err != nil {
		return err
	}

	weeks, err := parseInsightDays(resp, mapping)
	if err != nil {
		return err
	}

	for _, week := range sortedDates(weeks) {
		vals := weeks[week]
		w := &types.WeeklyPageStats{
			Platform:   types.PlatformFacebook,
			PageID:     f.pageID,
			WeekEnding: week,
			Followers:  vals["followers"],
			PageReach:  vals["page_reach"],
			PageViews:  vals["page_views"],
		}
		if err := f.store.UpsertWeeklyPageStats(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// ingestAudienceSegments writes follower segmentation rows. Each
// dimension maps to one lifetime-breakdown metric; pages without the
// metric (small audiences) are skipped with a warning.
func (f *Facebook) ingestAudienceSegments(ctx context.Context) error {
	dimensions := map[string]string{
		types.SegmentGender:  "page_fans_gender_age",
		types.SegmentCountry: "page_fans_country",
		types.SegmentCity:    "page_fans_city",
	}

	for dim, metric := range dimensions {
		var resp graph.InsightsResponse
		err := f.client.Get(ctx, f.pageID+"/insights", map[string]string{
			"metric": metric,
			"period": "week",
		}, &resp)
		if err != nil {
			f.log.Warn().Str("metric", metric).Err(err).Msg("audience metric unavailable")
			continue
		}

		for _, ins := range resp.Data {
			if len(ins.Values) == 0 {
				continue
			}
			latest := ins.Values[len(ins.Values)-1]
			t, err := graph.ParseTime(latest.EndTime)
			if err != nil {
				return err
			}
			week := t.UTC().Format(types.DateFormat)

			for segment, count := range latest.Map() {
				seg := &types.FollowerSegment{
					Platform:   types.PlatformFacebook,
					PageID:     f.pageID,
					WeekEnding: week,
					Dimension:  dim,
					Segment:    segment,
					Followers:  count,
				}
				if err := f.store.InsertFollowerSegment(ctx, seg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// inferFormat deduces the post format from attachment media type and
// status type.
func inferFormat(p *fbPost) string {
	var media string
	if len(p.Attachments.Data) > 0 {
		media = strings.ToLower(p.Attachments.Data[0].MediaType)
	}
	status := strings.ToLower(p.StatusType)

	switch {
	case strings.Contains(media, "video") || strings.Contains(status, "video"):
		return types.FormatVideo
	case strings.Contains(media, "photo") || strings.Contains(media, "image"):
		return types.FormatImage
	case strings.Contains(media, "album"):
		return types.FormatCarousel
	case strings.Contains(media, "link") || strings.Contains(status, "shared_story"):
		return types.FormatLink
	}
	if status != "" {
		return status
	}
	return types.FormatUnknown
}
