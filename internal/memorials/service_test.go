package memorials

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/tags"
	lisvalidation "github.com/goliatone/go-lis/internal/validation"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

type fixture struct {
	pages     pages.Service
	memorials Service
	authors   *authors.MemoryRepository
	author    uuid.UUID
	typeID    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	tagSvc := tags.NewService(tags.NewMemoryRepository())
	f := &fixture{authors: authors.NewMemoryRepository(), author: uuid.New()}
	if err := f.authors.Save(ctx, &authors.Author{PageID: f.author}); err != nil {
		t.Fatalf("seed author: %v", err)
	}
	house, err := tagSvc.Create(ctx, tags.SaveRequest{Kind: tags.KindMemorialType, Titles: i18n.Text{EN: "Birth house", DE: "Geburtshaus", CS: "Rodný dům"}})
	if err != nil {
		t.Fatalf("seed memorial type: %v", err)
	}
	f.typeID = house.ID
	repo := NewMemoryRepository()
	f.pages = pages.NewService(pages.NewMemoryPageRepository(),
		pages.WithVariant(NewVariant(repo, tagSvc, f.authors)),
		pages.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	f.memorials = NewService(f.pages, repo)
	return f
}

func (f *fixture) memorial(lon, lat float64) *Memorial {
	m := &Memorial{AuthorIDs: []uuid.UUID{f.author}, MemorialTypeIDs: []int64{f.typeID}}
	m.SetPoint(orb.Point{lon, lat})
	return m
}

func TestCreateDerivesSlugFromTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	site, _, err := f.memorials.Create(ctx, CreateRequest{Titles: i18n.Text{EN: "Goethe House"}, Memorial: f.memorial(12.87, 50.23)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if site.Page.Slug != "goethe-house" {
		t.Fatalf("unexpected slug %q", site.Page.Slug)
	}
	second, _, err := f.memorials.Create(ctx, CreateRequest{Titles: i18n.Text{EN: "Goethe House"}, Memorial: f.memorial(12.9, 50.2)})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Page.Slug != "goethe-house-2" {
		t.Fatalf("expected numbered slug, got %q", second.Page.Slug)
	}
	custom, _, err := f.memorials.Create(ctx, CreateRequest{Titles: i18n.Text{EN: "Spa colonnade"}, Slug: "kolonada", Memorial: f.memorial(12.88, 50.22)})
	if err != nil {
		t.Fatalf("create custom: %v", err)
	}
	if custom.Page.Slug != "kolonada" {
		t.Fatalf("expected editor slug kept, got %q", custom.Page.Slug)
	}
}

func TestCreateValidatesRelationsAndCoordinates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := map[string]*Memorial{
		"no authors":     {MemorialTypeIDs: []int64{f.typeID}, Lon: float(14), Lat: float(50)},
		"unknown author": {AuthorIDs: []uuid.UUID{uuid.New()}, MemorialTypeIDs: []int64{f.typeID}, Lon: float(14), Lat: float(50)},
		"no types":       {AuthorIDs: []uuid.UUID{f.author}, Lon: float(14), Lat: float(50)},
		"no point":       {AuthorIDs: []uuid.UUID{f.author}, MemorialTypeIDs: []int64{f.typeID}},
		"bad latitude":   {AuthorIDs: []uuid.UUID{f.author}, MemorialTypeIDs: []int64{f.typeID}, Lon: float(14), Lat: float(95)},
	}
	for name, memorial := range cases {
		_, _, err := f.memorials.Create(ctx, CreateRequest{Titles: i18n.Text{EN: "Site"}, Memorial: memorial})
		if !lisvalidation.IsInvalid(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestParagraphValidation(t *testing.T) {
	f := newFixture(t)
	memorial := f.memorial(14.4, 50.1)
	memorial.DescriptionDE = []Paragraph{{Heading: "Geschichte", Content: "<p> </p>", Editor: "A. B."}}
	_, _, err := f.memorials.Create(context.Background(), CreateRequest{Titles: i18n.Text{EN: "Site"}, Memorial: memorial})
	fields := lisvalidation.Issues(err)
	if len(fields) == 0 {
		t.Fatalf("expected paragraph validation error, got %v", err)
	}

	if err := (Paragraph{Content: "<p>Text</p>", Editor: "A. B.", Footnotes: []Footnote{{Tag: "1"}}}).Validate(); err == nil {
		t.Fatalf("expected empty footnote to fail")
	}
	if err := (Paragraph{Content: "<p>Text</p>"}).Validate(); err == nil {
		t.Fatalf("expected missing editor to fail")
	}
}

func TestLocalizeFallbacks(t *testing.T) {
	m := &Memorial{
		Address:      "<p>Hauptstraße 1</p>",
		AddressDE:    "<p></p>",
		Directions:   "<p>Take the tram</p>",
		Introduction: "<p>Intro</p>",
		Description:  []Paragraph{{Content: "<p>en</p>", Editor: "x"}},
	}
	de := m.Localize(i18n.DE)
	if de.Address != "<p>Hauptstraße 1</p>" {
		t.Fatalf("expected address fallback, got %q", de.Address)
	}
	if de.Directions != "" || de.Introduction != "" || len(de.Description) != 0 {
		t.Fatalf("expected no fallback for prose, got %+v", de)
	}
	if en := m.Localize(i18n.EN); len(en.Description) != 1 {
		t.Fatalf("expected english description")
	}
}

func TestSaveDraftAndOfAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	site, _, err := f.memorials.Create(ctx, CreateRequest{Titles: i18n.Text{EN: "Museum"}, Memorial: f.memorial(14.4, 50.1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	titles := i18n.Text{EN: "Museum", DE: "Museum", CS: "Muzeum"}
	revision, err := f.memorials.SaveDraft(ctx, SaveRequest{PageID: site.Page.ID, Titles: &titles})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	latest, err := f.memorials.Latest(ctx, site.Page.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Page.TitleCS != "Muzeum" || len(latest.Memorial.AuthorIDs) != 1 {
		t.Fatalf("unexpected latest %+v", latest.Page)
	}
	if _, err := f.pages.Publish(ctx, pages.PublishRequest{RevisionID: revision.ID}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	live, err := f.memorials.Get(ctx, site.Page.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if live.Page.TitleCS != "Muzeum" || !live.Page.Live {
		t.Fatalf("unexpected live page %+v", live.Page)
	}

	ids, err := f.memorials.OfAuthor(ctx, f.author)
	if err != nil {
		t.Fatalf("of author: %v", err)
	}
	if len(ids) != 1 || ids[0] != site.Page.ID {
		t.Fatalf("unexpected memorials %v", ids)
	}
}

func float(v float64) *float64 { return &v }
