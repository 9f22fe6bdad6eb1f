// Package store implements the SQLite warehouse for Datax: normalized
// tables for pages, posts, daily post metrics, reaction breakdowns,
// weekly page statistics, audience segments, and ingestion runs.
package store

// Schema DDL for all tables. Dates are stored as ISO text (YYYY-MM-DD)
// so lexicographic order matches chronological order; counters and delta
// columns are non-null integers defaulting to zero.
const (
	createPages = `CREATE TABLE IF NOT EXISTS pages (
    platform TEXT NOT NULL,
    page_id TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (platform, page_id)
);`

	createPosts = `CREATE TABLE IF NOT EXISTS posts (
    platform TEXT NOT NULL,
    page_id TEXT NOT NULL,
    post_id TEXT NOT NULL,
    url TEXT,
    published_at TEXT NOT NULL,
    body TEXT,
    format TEXT NOT NULL,
    PRIMARY KEY (platform, page_id, post_id)
);`

	createDailyPostMetrics = `CREATE TABLE IF NOT EXISTS daily_post_metrics (
    platform TEXT NOT NULL,
    page_id TEXT NOT NULL,
    post_id TEXT NOT NULL,
    download_date TEXT NOT NULL,
    views INTEGER NOT NULL DEFAULT 0,
    reach INTEGER NOT NULL DEFAULT 0,
    impressions INTEGER NOT NULL DEFAULT 0,
    reactions INTEGER NOT NULL DEFAULT 0,
    comments INTEGER NOT NULL DEFAULT 0,
    shares INTEGER NOT NULL DEFAULT 0,
    saves INTEGER NOT NULL DEFAULT 0,
    link_clicks INTEGER NOT NULL DEFAULT 0,
    ctr REAL,
    delta_views INTEGER NOT NULL DEFAULT 0,
    delta_reach INTEGER NOT NULL DEFAULT 0,
    delta_reactions INTEGER NOT NULL DEFAULT 0,
    delta_comments INTEGER NOT NULL DEFAULT 0,
    delta_shares INTEGER NOT NULL DEFAULT 0,
    delta_saves INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (platform, page_id, post_id, download_date)
);`

	createPostReactionsDaily = `CREATE TABLE IF NOT EXISTS post_reactions_daily (
    platform TEXT NOT NULL,
    page_id TEXT NOT NULL,
    post_id TEXT NOT NULL,
    download_date TEXT NOT NULL,
    reaction_type TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (platform, page_id, post_id, download_date, reaction_type)
);`

	createWeeklyPageStats = `CREATE TABLE IF NOT EXISTS weekly_page_stats (
    platform TEXT NOT NULL,
    page_id TEXT NOT NULL,
    week_ending TEXT NOT NULL,
    followers INTEGER NOT NULL DEFAULT 0,
    page_reach INTEGER NOT NULL DEFAULT 0,
    page_views INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (platform, page_id, week_ending)
);`

	createFollowerSegments = `CREATE TABLE IF NOT EXISTS follower_segments (
    platform TEXT NOT NULL,
    page_id TEXT NOT NULL,
    week_ending TEXT NOT NULL,
    dimension TEXT NOT NULL,
    segment TEXT NOT NULL,
    followers INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (platform, page_id, week_ending, dimension, segment)
);`

	createIngestionRuns = `CREATE TABLE IF NOT EXISTS ingestion_runs (
    run_id TEXT PRIMARY KEY,
    platform TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    status TEXT NOT NULL,
    error TEXT
);`
)

// Index DDL for common queries.
const (
	idxPostsPublished = `CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(platform, page_id, published_at);`
	idxRunsPlatform   = `CREATE INDEX IF NOT EXISTS idx_runs_platform ON ingestion_runs(platform, started_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createPages,
	createPosts,
	createDailyPostMetrics,
	createPostReactionsDaily,
	createWeeklyPageStats,
	createFollowerSegments,
	createIngestionRuns,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPostsPublished,
	idxRunsPlatform,
}
