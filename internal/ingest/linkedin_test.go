package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElizabethRoman12/Datax/internal/linkedin"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

const liTestOrg = "urn:li:organization:123"

// liDayMillis returns epoch milliseconds for a UTC date.
func liDayMillis(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).UnixMilli()
}

// newLinkedInServer fakes the REST endpoints one organization ingestion
// hits: the posts listing, social counts, and follower statistics in
// both the plain and by-country aggregations.
func newLinkedInServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"elements": [
			{
				"urn": "urn:li:share:900",
				"createdAt": {"time": %d},
				"commentary": {"text": "product launch"},
				"content": {"media": {"type": "VIDEO"}},
				"associatedUrn": "urn:li:activity:900"
			},
			{
				"urn": "urn:li:share:901",
				"createdAt": {"time": %d},
				"commentary": {"text": "from last year"},
				"associatedUrn": "urn:li:activity:901"
			}
		], "paging": {"total": 2}}`,
			liDayMillis(2026, time.February, 10), liDayMillis(2025, time.November, 1))
	})

	mux.HandleFunc("/socialActions/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"likesSummary": {"totalLikes": 44},
			"commentsSummary": {"totalFirstLevelComments": 7},
			"shares": 3
		}`)
	})

	mux.HandleFunc("/organizationFollowerStatistics", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("aggregation") == "COUNTRY" {
			fmt.Fprintf(w, `{"elements": [
				{"timeRange": {"end": %d},
				 "followerCountsByCountry": {"country": "mx", "followerCount": 700}},
				{"timeRange": {"end": %d},
				 "followerCountsByCountry": {"country": "mx", "followerCount": 710}},
				{"timeRange": {"end": %d},
				 "followerCountsByCountry": {"country": "ar", "followerCount": 120}}
			]}`,
				liDayMillis(2026, time.February, 9), liDayMillis(2026, time.February, 10),
				liDayMillis(2026, time.February, 10))
			return
		}
		// Two days of the same ISO week plus one of the next week.
		fmt.Fprintf(w, `{"elements": [
			{"timeRange": {"end": %d}, "followerCounts": {"organicFollowerCount": 1000}},
			{"timeRange": {"end": %d}, "followerCounts": {"organicFollowerCount": 1010}},
			{"timeRange": {"end": %d}, "followerGains": {"organicFollowerGain": 5}}
		]}`,
			liDayMillis(2026, time.February, 9), liDayMillis(2026, time.February, 10),
			liDayMillis(2026, time.February, 16))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLinkedInRun(t *testing.T) {
	srv := newLinkedInServer(t)
	st := setupStore(t)
	ctx := context.Background()

	client := linkedin.New(linkedin.Config{BaseURL: srv.URL, AccessToken: "tok"})
	li := NewLinkedIn(client, st, LinkedInConfig{
		OrgID: "123",
		Since: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, li.Run(ctx))

	today := time.Now().UTC().Format(types.DateFormat)

	t.Run("organization is stored as a page", func(t *testing.T) {
		page, err := st.GetPage(ctx, types.PlatformLinkedIn, liTestOrg)
		require.NoError(t, err)
		assert.Equal(t, liTestOrg, page.Name)
	})

	t.Run("post with social counts under the run date", func(t *testing.T) {
		post, err := st.GetPost(ctx, types.PlatformLinkedIn, liTestOrg, "urn:li:share:900")
		require.NoError(t, err)
		assert.Equal(t, "product launch", post.Body)
		assert.Equal(t, types.FormatVideo, post.Format)

		m, err := st.GetDailyMetrics(ctx, types.MetricKey{
			Platform: types.PlatformLinkedIn, PageID: liTestOrg,
			PostID: "urn:li:share:900", DownloadDate: today,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(44), m.Reactions)
		assert.Equal(t, int64(7), m.Comments)
		assert.Equal(t, int64(3), m.Shares)
	})

	t.Run("post published before the cutoff is skipped", func(t *testing.T) {
		_, err := st.GetPost(ctx, types.PlatformLinkedIn, liTestOrg, "urn:li:share:901")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("daily follower stats reduce to one snapshot per week", func(t *testing.T) {
		var n int
		require.NoError(t, st.DB().QueryRow(
			`SELECT COUNT(*) FROM weekly_page_stats WHERE platform = ?`, types.PlatformLinkedIn,
		).Scan(&n))
		assert.Equal(t, 2, n)

		var followers int64
		require.NoError(t, st.DB().QueryRow(
			`SELECT followers FROM weekly_page_stats
			 WHERE platform = ? AND page_id = ? AND week_ending = ?`,
			types.PlatformLinkedIn, liTestOrg, "2026-02-10",
		).Scan(&followers))
		assert.Equal(t, int64(1010), followers, "the week keeps its latest day's value")
	})

	t.Run("country segments keep the latest count, uppercased", func(t *testing.T) {
		var mx int64
		require.NoError(t, st.DB().QueryRow(
			`SELECT followers FROM follower_segments
			 WHERE platform = ? AND dimension = ? AND segment = ?`,
			types.PlatformLinkedIn, types.SegmentCountry, "MX",
		).Scan(&mx))
		assert.Equal(t, int64(710), mx)

		var n int
		require.NoError(t, st.DB().QueryRow(
			`SELECT COUNT(*) FROM follower_segments WHERE platform = ?`, types.PlatformLinkedIn,
		).Scan(&n))
		assert.Equal(t, 2, n)
	})

	t.Run("the run is recorded as ok", func(t *testing.T) {
		var status string
		require.NoError(t, st.DB().QueryRow(
			`SELECT status FROM ingestion_runs WHERE platform = ?`, types.PlatformLinkedIn,
		).Scan(&status))
		assert.Equal(t, types.RunStatusOK, status)
	})
}

func TestLinkedInPostsFallBackToShares(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "not found"}`)
	})
	mux.HandleFunc("/shares", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"elements": [{
			"id": 555,
			"created": {"time": %d},
			"text": {"text": "legacy share"},
			"permalink": "https://linkedin.com/feed/555"
		}], "paging": {"total": 1}}`, liDayMillis(2026, time.March, 1))
	})
	mux.HandleFunc("/socialActions/", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.Path, "activity"), "share id resolves to an activity urn")
		fmt.Fprint(w, `{"likesSummary": {"totalLikes": 9}}`)
	})
	mux.HandleFunc("/organizationFollowerStatistics", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elements": []}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := setupStore(t)
	ctx := context.Background()

	client := linkedin.New(linkedin.Config{BaseURL: srv.URL, AccessToken: "tok"})
	li := NewLinkedIn(client, st, LinkedInConfig{
		OrgID: "123",
		Since: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, li.Run(ctx))

	post, err := st.GetPost(ctx, types.PlatformLinkedIn, liTestOrg, "555")
	require.NoError(t, err)
	assert.Equal(t, "legacy share", post.Body)
	assert.Equal(t, "https://linkedin.com/feed/555", post.URL)

	m, err := st.GetDailyMetrics(ctx, types.MetricKey{
		Platform: types.PlatformLinkedIn, PageID: liTestOrg,
		PostID: "555", DownloadDate: time.Now().UTC().Format(types.DateFormat),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), m.Reactions)
}

func TestLinkedInPermissionDenied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "ACCESS_DENIED", "serviceErrorCode": 100}`)
	})
	mux.HandleFunc("/organizationFollowerStatistics", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("aggregation") == "COUNTRY" {
			fmt.Fprint(w, `{"elements": []}`)
			return
		}
		fmt.Fprintf(w, `{"elements": [
			{"timeRange": {"end": %d}, "followerCounts": {"organicFollowerCount": 500}}
		]}`, liDayMillis(2026, time.February, 10))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := setupStore(t)
	ctx := context.Background()

	client := linkedin.New(linkedin.Config{BaseURL: srv.URL, AccessToken: "tok"})
	li := NewLinkedIn(client, st, LinkedInConfig{OrgID: "123"})
	require.NoError(t, li.Run(ctx), "a posts permission rejection still ingests account stats")

	var followers int64
	require.NoError(t, st.DB().QueryRow(
		`SELECT followers FROM weekly_page_stats WHERE platform = ?`, types.PlatformLinkedIn,
	).Scan(&followers))
	assert.Equal(t, int64(500), followers)
}
