package media_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/pkg/testsupport"
)

func TestBunRepositoryRenditions(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*media.Image)(nil), (*media.Rendition)(nil))
	repo := media.NewBunRepository(db)

	image, err := repo.CreateImage(ctx, &media.Image{Title: "Villa", TitleDE: "Villa", File: "original_images/villa.jpg", Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	if image.ID == 0 {
		t.Fatalf("expected generated id")
	}
	loaded, err := repo.GetImage(ctx, image.ID)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	if loaded.Filename() != "villa.jpg" || loaded.Titles().DE != "Villa" {
		t.Fatalf("unexpected image %+v", loaded)
	}

	rendition, err := repo.CreateRendition(ctx, &media.Rendition{ImageID: image.ID, FilterSpec: "fill-100x100", File: "images/villa.fill-100x100.jpg", Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("create rendition: %v", err)
	}
	if _, err := repo.CreateRendition(ctx, &media.Rendition{ImageID: image.ID, FilterSpec: "fill-100x100", File: "images/dup.jpg"}); err == nil {
		t.Fatalf("expected duplicate rendition key to fail")
	}

	found, err := repo.FindRendition(ctx, image.ID, "fill-100x100", "")
	if err != nil {
		t.Fatalf("find rendition: %v", err)
	}
	if found.ID != rendition.ID || found.Name() != "villa.fill-100x100.jpg" {
		t.Fatalf("unexpected rendition %+v", found)
	}
	if _, err := repo.FindRendition(ctx, image.ID, "fill-100x100", "focus-1-2-3x4"); !media.IsNotFound(err) {
		t.Fatalf("expected not found for other focal point, got %v", err)
	}

	ids, err := repo.ImageIDs(ctx, []int64{image.ID, image.ID + 100})
	if err != nil {
		t.Fatalf("image ids: %v", err)
	}
	if !ids[image.ID] || ids[image.ID+100] {
		t.Fatalf("unexpected ids %v", ids)
	}

	if err := repo.DeleteImage(ctx, image.ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if err := repo.DeleteImage(ctx, image.ID); !media.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	renditions, err := repo.ListRenditions(ctx)
	if err != nil {
		t.Fatalf("list renditions: %v", err)
	}
	if len(renditions) != 1 {
		t.Fatalf("expected orphan rendition to remain, got %d", len(renditions))
	}
	if err := repo.DeleteRenditions(ctx, []int64{rendition.ID}); err != nil {
		t.Fatalf("delete renditions: %v", err)
	}
	renditions, _ = repo.ListRenditions(ctx)
	if len(renditions) != 0 {
		t.Fatalf("expected renditions removed")
	}
}
