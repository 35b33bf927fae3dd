package migrations

import (
	"context"
	"fmt"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/uptrace/bun"
)

type lookupIndex struct {
	model   any
	name    string
	columns []string
}

var lookupIndexes = []lookupIndex{
	{(*pages.Page)(nil), "pages_parent_id_idx", []string{"parent_id"}},
	{(*pages.Page)(nil), "pages_kind_live_idx", []string{"kind", "live"}},
	{(*pages.Revision)(nil), "page_revisions_page_id_idx", []string{"page_id", "created_at"}},
	{(*pages.Revision)(nil), "page_revisions_go_live_idx", []string{"approved_go_live_at"}},
	{(*authors.Name)(nil), "author_names_author_idx", []string{"author_id", "sort_order"}},
	{(*memorials.Memorial)(nil), "memorials_location_idx", []string{"lon", "lat"}},
	{(*memorials.MemorialAuthor)(nil), "memorial_authors_author_idx", []string{"author_id"}},
	{(*tags.Tag)(nil), "tags_kind_idx", []string{"kind"}},
	{(*tags.PageTag)(nil), "page_tags_tag_idx", []string{"tag_id"}},
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for _, idx := range lookupIndexes {
			_, err := db.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				Column(idx.columns...).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("create index %s: %w", idx.name, err)
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for _, idx := range lookupIndexes {
			if _, err := db.NewDropIndex().Index(idx.name).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("drop index %s: %w", idx.name, err)
			}
		}
		return nil
	})
}
