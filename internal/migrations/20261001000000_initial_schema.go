package migrations

import (
	"context"
	"fmt"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/uptrace/bun"
)

// Order matters for the rollback, which walks the list backwards.
var schemaModels = []any{
	(*pages.Page)(nil),
	(*pages.Revision)(nil),
	(*authors.Author)(nil),
	(*authors.Name)(nil),
	(*memorials.Memorial)(nil),
	(*memorials.MemorialAuthor)(nil),
	(*tags.Tag)(nil),
	(*tags.PageTag)(nil),
	(*media.Image)(nil),
	(*media.Rendition)(nil),
	(*auth.Editor)(nil),
	(*auth.APIKey)(nil),
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for _, model := range schemaModels {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("create table %T: %w", model, err)
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for i := len(schemaModels) - 1; i >= 0; i-- {
			if _, err := db.NewDropTable().Model(schemaModels[i]).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("drop table %T: %w", schemaModels[i], err)
			}
		}
		return nil
	})
}
