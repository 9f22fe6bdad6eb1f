package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ElizabethRoman12/Datax/internal/graph"
	"github.com/ElizabethRoman12/Datax/internal/store"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// InstagramConfig holds the parameters for an Instagram ingestion.
// UserID is the Instagram business account; when empty it is resolved
// from the linked Facebook page given by PageID.
type InstagramConfig struct {
	UserID string
	PageID string
	Since  time.Time // zero means January 1 of the current year
}

// maxMediaWarnings caps the insight warnings logged per run; past that
// they only count.
const maxMediaWarnings = 5

// Instagram ingests an Instagram business account: account identity,
// media since the cutoff, and a daily snapshot of each media's lifetime
// engagement counters under the run date.
type Instagram struct {
	client *graph.Client
	store  *store.Store
	cfg    InstagramConfig
	since  time.Time
	log    zerolog.Logger

	warnings int
}

// NewInstagram creates an Instagram ingester.
func NewInstagram(client *graph.Client, st *store.Store, cfg InstagramConfig) *Instagram {
	since := cfg.Since
	if since.IsZero() {
		since = yearStart()
	}
	return &Instagram{
		client: client,
		store:  st,
		cfg:    cfg,
		since:  since,
		log:    log.With().Str("component", "ingest.instagram").Logger(),
	}
}

// mediaFields is the field selection for the media listing.
const mediaFields = "id,caption,media_type,permalink,timestamp,like_count,comments_count"

// igMedia is the media-listing item shape.
type igMedia struct {
	ID            string `json:"id"`
	Caption       string `json:"caption"`
	MediaType     string `json:"media_type"`
	Permalink     string `json:"permalink"`
	Timestamp     string `json:"timestamp"`
	LikeCount     int64  `json:"like_count"`
	CommentsCount int64  `json:"comments_count"`
}

// Run executes one full ingestion, recording it as an ingestion run.
func (ig *Instagram) Run(ctx context.Context) error {
	run, err := ig.store.BeginRun(ctx, types.PlatformInstagram)
	if err != nil {
		return err
	}
	ig.log.Info().Str("run_id", run.RunID).Msg("starting instagram ingestion")

	err = ig.ingest(ctx)
	if finishErr := ig.store.FinishRun(ctx, run, err); finishErr != nil && err == nil {
		err = finishErr
	}
	if err != nil {
		ig.log.Error().Str("run_id", run.RunID).Err(err).Msg("instagram ingestion failed")
		return err
	}
	ig.log.Info().Str("run_id", run.RunID).Msg("instagram ingestion finished")
	return nil
}

func (ig *Instagram) ingest(ctx context.Context) error {
	userID, err := ig.resolveUser(ctx)
	if err != nil {
		return err
	}

	if err := ig.ingestAccount(ctx, userID); err != nil {
		return err
	}
	return ig.ingestMedia(ctx, userID)
}

// resolveUser returns the configured business account ID, or resolves it
// from the linked Facebook page.
func (ig *Instagram) resolveUser(ctx context.Context) (string, error) {
	if ig.cfg.UserID != "" {
		return ig.cfg.UserID, nil
	}
	if ig.cfg.PageID == "" {
		return "", fmt.Errorf("instagram: neither user ID nor page ID configured")
	}

	var js struct {
		InstagramBusinessAccount struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	if err := ig.client.Get(ctx, ig.cfg.PageID, map[string]string{"fields": "instagram_business_account"}, &js); err != nil {
		return "", err
	}
	if js.InstagramBusinessAccount.ID == "" {
		return "", fmt.Errorf("instagram: page %s has no linked business account", ig.cfg.PageID)
	}
	return js.InstagramBusinessAccount.ID, nil
}

// ingestAccount upserts the account as a page row.
func (ig *Instagram) ingestAccount(ctx context.Context, userID string) error {
	var js struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := ig.client.Get(ctx, userID, map[string]string{"fields": "id,username,name"}, &js); err != nil {
		return err
	}

	name := js.Username
	if name == "" {
		name = js.Name
	}
	return ig.store.UpsertPage(ctx, &types.Page{
		Platform: types.PlatformInstagram,
		PageID:   userID,
		Name:     name,
	})
}

// ingestMedia walks the media listing and snapshots each media's
// lifetime counters under today's date. The API does not reliably honor
// a since parameter on /media, so the cutoff is applied client-side.
func (ig *Instagram) ingestMedia(ctx context.Context, userID string) error {
	today := time.Now().UTC().Format(types.DateFormat)
	params := map[string]string{
		"fields": mediaFields,
		"limit":  "100",
	}

	return ig.client.Paginate(ctx, userID+"/media", params, func(raw json.RawMessage) error {
		var m igMedia
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("decoding media: %w", err)
		}
		if m.Timestamp == "" {
			return nil
		}
		publishedAt, err := graph.ParseTime(m.Timestamp)
		if err != nil {
			return fmt.Errorf("media %s: %w", m.ID, err)
		}
		if publishedAt.Before(ig.since) {
			return nil
		}
		return ig.ingestOne(ctx, userID, &m, publishedAt, today)
	})
}

func (ig *Instagram) ingestOne(ctx context.Context, userID string, m *igMedia, publishedAt time.Time, today string) error {
	post := &types.Post{
		Platform:    types.PlatformInstagram,
		PageID:      userID,
		PostID:      m.ID,
		URL:         m.Permalink,
		PublishedAt: publishedAt,
		Body:        m.Caption,
		Format:      formatFromMediaType(m.MediaType),
	}
	if err := ig.store.UpsertPost(ctx, post); err != nil {
		return err
	}

	reach, saved := ig.mediaInsights(ctx, m.ID)
	views := ig.videoViews(ctx, m.ID, m.MediaType)

	metrics := &types.DailyMetrics{
		Platform:     types.PlatformInstagram,
		PageID:       userID,
		PostID:       m.ID,
		DownloadDate: today,
		Views:        views,
		Reach:        reach,
		Reactions:    m.LikeCount,
		Comments:     m.CommentsCount,
		Saves:        saved,
	}
	return ig.store.UpsertDailyMetrics(ctx, metrics)
}

// mediaInsights fetches reach and saved counts for one media. Failures
// degrade to zeros: some media types expose no insights at all.
func (ig *Instagram) mediaInsights(ctx context.Context, mediaID string) (reach, saved int64) {
	var resp graph.InsightsResponse
	err := ig.client.Get(ctx, mediaID+"/insights", map[string]string{"metric": "reach,saved"}, &resp)
	if err != nil {
		ig.warn("media insights unavailable", mediaID, err)
		return 0, 0
	}

	for _, ins := range resp.Data {
		if len(ins.Values) == 0 {
			continue
		}
		v := ins.Values[len(ins.Values)-1].Int()
		switch ins.Name {
		case "reach":
			reach = v
		case "saved":
			saved = v
		}
	}
	return reach, saved
}

// videoViews fetches the video view count where it applies. Images and
// carousels reject the metric, which is not an error.
func (ig *Instagram) videoViews(ctx context.Context, mediaID, mediaType string) int64 {
	if mediaType != "VIDEO" {
		return 0
	}

	var resp graph.InsightsResponse
	err := ig.client.Get(ctx, mediaID+"/insights", map[string]string{"metric": "video_views"}, &resp)
	if err != nil {
		return 0
	}
	for _, ins := range resp.Data {
		if ins.Name == "video_views" && len(ins.Values) > 0 {
			return ins.Values[len(ins.Values)-1].Int()
		}
	}
	return 0
}

// warn logs up to maxMediaWarnings insight warnings per run.
func (ig *Instagram) warn(msg, mediaID string, err error) {
	ig.warnings++
	if ig.warnings <= maxMediaWarnings {
		ig.log.Warn().Str("media_id", mediaID).Err(err).Msg(msg)
	}
}

// formatFromMediaType maps the API media type to a post format.
func formatFromMediaType(mediaType string) string {
	switch mediaType {
	case "IMAGE":
		return types.FormatImage
	case "VIDEO":
		return types.FormatVideo
	case "CAROUSEL_ALBUM":
		return types.FormatCarousel
	default:
		return types.FormatUnknown
	}
}
