package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// UpsertPost inserts or updates a post row. The post body, URL, format,
// and publication time are refreshed on conflict; the key columns never
// change.
func (s *Store) UpsertPost(ctx context.Context, post *types.Post) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO posts (platform, page_id, post_id, url, published_at, body, format)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (platform, page_id, post_id) DO UPDATE SET
           url = excluded.url,
           published_at = excluded.published_at,
           body = excluded.body,
           format = excluded.format`,
		post.Platform, post.PageID, post.PostID, post.URL,
		post.PublishedAt.UTC().Format(time.RFC3339), post.Body, post.Format,
	)
	if err != nil {
		return fmt.Errorf("upserting post %s/%s/%s: %w", post.Platform, post.PageID, post.PostID, err)
	}
	return nil
}

// GetPost retrieves a post by its key.
func (s *Store) GetPost(ctx context.Context, platform, pageID, postID string) (*types.Post, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	post := &types.Post{}
	var publishedAt string
	err = db.QueryRowContext(ctx,
		`SELECT platform, page_id, post_id, url, published_at, body, format
         FROM posts WHERE platform = ? AND page_id = ? AND post_id = ?`,
		platform, pageID, postID,
	).Scan(&post.Platform, &post.PageID, &post.PostID, &post.URL, &publishedAt, &post.Body, &post.Format)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %s/%s/%s: %w", platform, pageID, postID, err)
	}

	post.PublishedAt, err = time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing published_at for post %s: %w", postID, err)
	}
	return post, nil
}
