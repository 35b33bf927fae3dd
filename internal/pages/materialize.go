package pages

// Materialize turns a revision snapshot into the page object to publish.
// The snapshot may predate a move, so every field that belongs to the page
// as a whole is taken from the current live row: tree position, live state,
// ownership and the draft title mirror. The URL path is derived from the
// snapshot slug under the current parent.
func Materialize(snapshot, live, parent *Page) *Page {
	page := snapshot.Clone()
	page.ID = live.ID
	page.Kind = live.Kind
	page.ParentID = cloneUUIDPtr(live.ParentID)
	page.Path = live.Path
	page.Depth = live.Depth
	page.NumChild = live.NumChild
	page.URLPath = urlPathFor(parent, page.Slug)

	page.DraftTitle = live.DraftTitle
	page.DraftTitleDE = live.DraftTitleDE
	page.DraftTitleCS = live.DraftTitleCS

	page.Live = live.Live
	page.HasUnpublishedChanges = live.HasUnpublishedChanges
	page.OwnerID = cloneUUIDPtr(live.OwnerID)
	page.Locked = live.Locked
	page.LatestRevisionCreatedAt = cloneTimePtr(live.LatestRevisionCreatedAt)
	page.FirstPublishedAt = cloneTimePtr(live.FirstPublishedAt)
	page.LastPublishedAt = cloneTimePtr(live.LastPublishedAt)
	page.LiveRevisionID = cloneUUIDPtr(live.LiveRevisionID)
	page.CreatedAt = live.CreatedAt
	return page
}
