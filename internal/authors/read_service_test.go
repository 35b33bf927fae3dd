package authors_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/pkg/testsupport"
)

type dbFixture struct {
	pages   pages.Service
	authors authors.Service
	read    authors.ReadService
	tags    tags.Service
}

func newDBFixture(t *testing.T) *dbFixture {
	t.Helper()
	db := testsupport.NewBunDB(t,
		(*pages.Page)(nil), (*pages.Revision)(nil),
		(*authors.Author)(nil), (*authors.Name)(nil),
		(*tags.Tag)(nil), (*tags.PageTag)(nil),
	)
	repo := authors.NewBunRepository(db)
	tagSvc := tags.NewService(tags.NewBunRepository(db))
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	pageSvc := pages.NewService(pages.NewBunPageRepository(db),
		pages.WithVariant(authors.NewVariant(repo, tagSvc)),
		pages.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	return &dbFixture{
		pages:   pageSvc,
		authors: authors.NewService(pageSvc, repo),
		read:    authors.NewDBReadService(db, repo, tagSvc),
		tags:    tagSvc,
	}
}

func (f *dbFixture) publish(t *testing.T, author *authors.Author, names ...*authors.Name) *authors.Profile {
	t.Helper()
	ctx := context.Background()
	profile, revision, err := f.authors.Create(ctx, authors.CreateRequest{Author: author, Names: names})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.pages.Publish(ctx, pages.PublishRequest{RevisionID: revision.ID}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	return profile
}

func TestReadServiceListsLiveAuthors(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	poetry, err := f.tags.Create(ctx, tags.SaveRequest{Kind: tags.KindGenre, Titles: i18n.Text{EN: "Poetry", DE: "Lyrik", CS: "Poezie"}})
	if err != nil {
		t.Fatalf("create genre: %v", err)
	}

	goethe := f.publish(t,
		&authors.Author{Gender: authors.GenderMale, Birth: authors.Date(1749, 8, 28), PlaceOfBirth: "Frankfurt", GenreIDs: []int64{poetry.ID}},
		&authors.Name{FirstName: "Johann Wolfgang", LastName: "Goethe"},
	)
	f.publish(t,
		&authors.Author{Gender: authors.GenderFemale, Birth: authors.Date(1820, 2, 4), PlaceOfBirth: "Wien", PlaceOfBirthCS: "Vídeň"},
		&authors.Name{FirstName: "Božena", LastName: "Němcová", BirthName: "Panklová"},
	)
	if _, _, err := f.authors.Create(ctx, authors.CreateRequest{
		Author: &authors.Author{},
		Names:  []*authors.Name{{FirstName: "Draft", LastName: "Only"}},
	}); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	records, total, err := f.read.List(ctx, authors.ListOptions{Language: i18n.EN})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Fatalf("expected two live authors, got %d (%d)", len(records), total)
	}
	if records[0].Page.Title != "Božena Němcová" {
		t.Fatalf("expected name order, got %q first", records[0].Page.Title)
	}

	records, _, err = f.read.List(ctx, authors.ListOptions{
		Language: i18n.EN,
		Sort:     []query.SortField{{Field: "date_of_birth_year", Desc: true}},
		Limit:    1,
	})
	if err != nil {
		t.Fatalf("sorted list: %v", err)
	}
	if len(records) != 1 || records[0].Author.Birth.Year == nil || *records[0].Author.Birth.Year != 1820 {
		t.Fatalf("expected youngest author first, got %+v", records)
	}

	records, _, err = f.read.List(ctx, authors.ListOptions{GenreIDs: []int64{poetry.ID}})
	if err != nil {
		t.Fatalf("genre filter: %v", err)
	}
	if len(records) != 1 || records[0].Page.ID != goethe.Page.ID || len(records[0].Genres) != 1 {
		t.Fatalf("unexpected genre filter result %+v", records)
	}

	records, _, err = f.read.List(ctx, authors.ListOptions{
		Dates: []authors.DateFilter{{Field: "date_of_birth_year", Op: query.OpLt, Values: []int{1800}}},
	})
	if err != nil {
		t.Fatalf("date filter: %v", err)
	}
	if len(records) != 1 || records[0].Page.ID != goethe.Page.ID {
		t.Fatalf("unexpected date filter result %+v", records)
	}

	records, _, err = f.read.List(ctx, authors.ListOptions{Genders: []authors.Gender{authors.GenderFemale}})
	if err != nil {
		t.Fatalf("gender filter: %v", err)
	}
	if len(records) != 1 || records[0].Names[0].BirthName != "Panklová" {
		t.Fatalf("unexpected gender filter result %+v", records)
	}
}

func TestReadServiceSearch(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	f.publish(t,
		&authors.Author{PlaceOfBirth: "Wien", PlaceOfBirthCS: "Vídeň"},
		&authors.Name{FirstName: "Bertha", LastName: "Suttner"},
		&authors.Name{FirstName: "B.", LastName: "Oulot", IsPseudonym: true},
	)
	f.publish(t, &authors.Author{}, &authors.Name{FirstName: "Karel", LastName: "Čapek"})

	for _, tc := range []struct {
		search string
		lang   i18n.Language
		want   int
	}{
		{"oulot", i18n.EN, 1},
		{"vídeň", i18n.CS, 1},
		{"wien", i18n.CS, 0},
		{"wien", i18n.DE, 1},
		{"kar", i18n.EN, 1},
		{"nobody", i18n.EN, 0},
		{"%", i18n.EN, 0},
		{"_", i18n.EN, 0},
		{"ber_ha", i18n.EN, 0},
	} {
		_, total, err := f.read.List(ctx, authors.ListOptions{Search: tc.search, Language: tc.lang})
		if err != nil {
			t.Fatalf("search %q: %v", tc.search, err)
		}
		if total != tc.want {
			t.Fatalf("search %q in %s: expected %d, got %d", tc.search, tc.lang, tc.want, total)
		}
	}
}

func TestReadServiceRejectsUnknownDateField(t *testing.T) {
	f := newDBFixture(t)
	_, _, err := f.read.List(context.Background(), authors.ListOptions{
		Dates: []authors.DateFilter{{Field: "gender", Op: query.OpEq, Values: []int{1}}},
	})
	if err == nil {
		t.Fatalf("expected error for unknown date field")
	}
}

func TestReadServiceGetAndAutocomplete(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	profile, _, err := f.authors.Create(ctx, authors.CreateRequest{
		Author: &authors.Author{},
		Names:  []*authors.Name{{FirstName: "Franz", LastName: "Kafka", FirstNameCS: "František"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.read.Get(ctx, profile.Page.ID, false); !authors.IsNotFound(err) {
		t.Fatalf("expected drafts hidden, got %v", err)
	}
	record, err := f.read.Get(ctx, profile.Page.ID, true)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if len(record.Names) != 1 || record.Profile().Title().LastName != "Kafka" {
		t.Fatalf("unexpected record %+v", record)
	}

	matches, err := f.read.Autocomplete(ctx, "františek", 10)
	if err != nil {
		t.Fatalf("autocomplete: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != profile.Page.ID {
		t.Fatalf("unexpected matches %+v", matches)
	}
}
