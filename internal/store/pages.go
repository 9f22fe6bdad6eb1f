package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// UpsertPage inserts or updates a page row.
func (s *Store) UpsertPage(ctx context.Context, page *types.Page) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO pages (platform, page_id, name)
         VALUES (?, ?, ?)
         ON CONFLICT (platform, page_id) DO UPDATE SET name = excluded.name`,
		page.Platform, page.PageID, page.Name,
	)
	if err != nil {
		return fmt.Errorf("upserting page %s/%s: %w", page.Platform, page.PageID, err)
	}
	return nil
}

// GetPage retrieves a page by platform and ID.
func (s *Store) GetPage(ctx context.Context, platform, pageID string) (*types.Page, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	page := &types.Page{}
	err = db.QueryRowContext(ctx,
		`SELECT platform, page_id, name FROM pages WHERE platform = ? AND page_id = ?`,
		platform, pageID,
	).Scan(&page.Platform, &page.PageID, &page.Name)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting page %s/%s: %w", platform, pageID, err)
	}
	return page, nil
}
