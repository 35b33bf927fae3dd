package tags_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/pkg/testsupport"
	"github.com/google/uuid"
)

func newBunRepository(t *testing.T) *tags.BunRepository {
	t.Helper()
	db := testsupport.NewBunDB(t, (*tags.Tag)(nil), (*tags.PageTag)(nil))
	return tags.NewBunRepository(db)
}

func TestBunRepositoryListAndSearch(t *testing.T) {
	repo := newBunRepository(t)
	ctx := context.Background()
	for _, titles := range []i18n.Text{
		{EN: "Poetry", DE: "Lyrik", CS: "Poezie"},
		{EN: "Drama", DE: "", CS: "Drama"},
		{EN: "Prose", DE: "Prosa", CS: "Próza"},
	} {
		if _, err := repo.Create(ctx, &tags.Tag{Kind: tags.KindGenre, Title: titles.EN, TitleDE: titles.DE, TitleCS: titles.CS}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, total, err := repo.List(ctx, tags.ListOptions{Kind: tags.KindGenre, Language: i18n.DE, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Fatalf("expected 2 of 3, got %d of %d", len(list), total)
	}
	// Drama has no german title and sorts by its base title
	if list[0].Title != "Drama" || list[1].Title != "Poetry" {
		t.Fatalf("unexpected order %s, %s", list[0].Title, list[1].Title)
	}

	found, _, err := repo.List(ctx, tags.ListOptions{Kind: tags.KindGenre, Search: "lyr"})
	if err != nil || len(found) != 1 || found[0].Title != "Poetry" {
		t.Fatalf("search failed: %v %v", found, err)
	}
	wild, _, err := repo.List(ctx, tags.ListOptions{Kind: tags.KindGenre, Search: "_"})
	if err != nil || len(wild) != 0 {
		t.Fatalf("expected underscore to match literally, got %v %v", wild, err)
	}
}

func TestBunRepositoryAttachments(t *testing.T) {
	repo := newBunRepository(t)
	ctx := context.Background()
	poetry, err := repo.Create(ctx, &tags.Tag{Kind: tags.KindGenre, Title: "Poetry", TitleDE: "Lyrik", TitleCS: "Poezie"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	german, err := repo.Create(ctx, &tags.Tag{Kind: tags.KindLanguage, Title: "German", TitleDE: "Deutsch", TitleCS: "Němčina"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	page := uuid.New()

	if err := repo.SetPageTags(ctx, page, tags.KindGenre, []int64{poetry.ID}); err != nil {
		t.Fatalf("attach genre: %v", err)
	}
	if err := repo.SetPageTags(ctx, page, tags.KindLanguage, []int64{german.ID}); err != nil {
		t.Fatalf("attach language: %v", err)
	}
	// replacing genres leaves languages alone
	if err := repo.SetPageTags(ctx, page, tags.KindGenre, nil); err != nil {
		t.Fatalf("clear genres: %v", err)
	}
	genres, _ := repo.PageTags(ctx, []uuid.UUID{page}, tags.KindGenre)
	languages, _ := repo.PageTags(ctx, []uuid.UUID{page}, tags.KindLanguage)
	if len(genres[page]) != 0 || len(languages[page]) != 1 {
		t.Fatalf("unexpected attachments genres=%v languages=%v", genres[page], languages[page])
	}

	if err := repo.Delete(ctx, german.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	languages, _ = repo.PageTags(ctx, []uuid.UUID{page}, tags.KindLanguage)
	if len(languages[page]) != 0 {
		t.Fatalf("expected attachment removed with tag")
	}
	if _, err := repo.GetByID(ctx, german.ID); !tags.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBunRepositoryTitleTaken(t *testing.T) {
	repo := newBunRepository(t)
	ctx := context.Background()
	tag, _ := repo.Create(ctx, &tags.Tag{Kind: tags.KindGenre, Title: "Poetry", TitleDE: "Lyrik", TitleCS: "Poezie"})

	taken, err := repo.TitleTaken(ctx, tags.KindGenre, i18n.DE, "Lyrik", 0)
	if err != nil || !taken {
		t.Fatalf("expected title taken: %v", err)
	}
	taken, _ = repo.TitleTaken(ctx, tags.KindGenre, i18n.DE, "Lyrik", tag.ID)
	if taken {
		t.Fatalf("expected own title to be ignored")
	}
}
