package memorials

import (
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/uptrace/bun"
)

// Memorial is the variant payload of memorial pages: a place on the map
// remembering one or more authors.
type Memorial struct {
	bun.BaseModel `bun:"table:memorials,alias:m"`

	PageID       uuid.UUID `bun:"page_id,pk,type:uuid" json:"-"`
	TitleImageID *int64    `bun:"title_image_id" json:"title_image_id,omitempty"`

	Lon *float64 `bun:"lon" json:"lon"`
	Lat *float64 `bun:"lat" json:"lat"`

	Address        string `bun:"address,notnull" json:"address"`
	AddressDE      string `bun:"address_de,notnull" json:"address_de"`
	AddressCS      string `bun:"address_cs,notnull" json:"address_cs"`
	ContactInfo    string `bun:"contact_info,notnull" json:"contact_info"`
	ContactInfoDE  string `bun:"contact_info_de,notnull" json:"contact_info_de"`
	ContactInfoCS  string `bun:"contact_info_cs,notnull" json:"contact_info_cs"`
	Directions     string `bun:"directions,notnull" json:"directions"`
	DirectionsDE   string `bun:"directions_de,notnull" json:"directions_de"`
	DirectionsCS   string `bun:"directions_cs,notnull" json:"directions_cs"`
	Introduction   string `bun:"introduction,notnull" json:"introduction"`
	IntroductionDE string `bun:"introduction_de,notnull" json:"introduction_de"`
	IntroductionCS string `bun:"introduction_cs,notnull" json:"introduction_cs"`

	Description           []Paragraph `bun:"description,type:jsonb" json:"description"`
	DescriptionDE         []Paragraph `bun:"description_de,type:jsonb" json:"description_de"`
	DescriptionCS         []Paragraph `bun:"description_cs,type:jsonb" json:"description_cs"`
	DetailedDescription   []Paragraph `bun:"detailed_description,type:jsonb" json:"detailed_description"`
	DetailedDescriptionDE []Paragraph `bun:"detailed_description_de,type:jsonb" json:"detailed_description_de"`
	DetailedDescriptionCS []Paragraph `bun:"detailed_description_cs,type:jsonb" json:"detailed_description_cs"`

	// Plain text of the prose fields per language, kept for search.
	SearchText   string `bun:"search_text,notnull" json:"-"`
	SearchTextDE string `bun:"search_text_de,notnull" json:"-"`
	SearchTextCS string `bun:"search_text_cs,notnull" json:"-"`

	AuthorIDs       []uuid.UUID `bun:"-" json:"author_ids"`
	MemorialTypeIDs []int64     `bun:"-" json:"memorial_type_ids"`
}

// MemorialAuthor links a memorial to a remembered author page.
type MemorialAuthor struct {
	bun.BaseModel `bun:"table:memorial_authors,alias:ma"`

	MemorialID uuid.UUID `bun:"memorial_id,pk,type:uuid"`
	AuthorID   uuid.UUID `bun:"author_id,pk,type:uuid"`
	SortOrder  int       `bun:"sort_order,notnull"`
}

// Point returns the coordinates when both are set.
func (m *Memorial) Point() (orb.Point, bool) {
	if m.Lon == nil || m.Lat == nil {
		return orb.Point{}, false
	}
	return orb.Point{*m.Lon, *m.Lat}, true
}

// SetPoint stores p as the memorial coordinates.
func (m *Memorial) SetPoint(p orb.Point) {
	lon, lat := p.Lon(), p.Lat()
	m.Lon, m.Lat = &lon, &lat
}

func (m *Memorial) Addresses() i18n.Text {
	return i18n.Text{EN: m.Address, DE: m.AddressDE, CS: m.AddressCS}
}

func (m *Memorial) ContactInfos() i18n.Text {
	return i18n.Text{EN: m.ContactInfo, DE: m.ContactInfoDE, CS: m.ContactInfoCS}
}

func (m *Memorial) AllDirections() i18n.Text {
	return i18n.Text{EN: m.Directions, DE: m.DirectionsDE, CS: m.DirectionsCS}
}

func (m *Memorial) Introductions() i18n.Text {
	return i18n.Text{EN: m.Introduction, DE: m.IntroductionDE, CS: m.IntroductionCS}
}

func (m *Memorial) Descriptions() i18n.Translated[[]Paragraph] {
	return i18n.Translated[[]Paragraph]{EN: m.Description, DE: m.DescriptionDE, CS: m.DescriptionCS}
}

func (m *Memorial) DetailedDescriptions() i18n.Translated[[]Paragraph] {
	return i18n.Translated[[]Paragraph]{EN: m.DetailedDescription, DE: m.DetailedDescriptionDE, CS: m.DetailedDescriptionCS}
}

// richStrict resolves rich text without falling back to the base language.
var richStrict = i18n.Field{RichText: true}

// Localized is the memorial prose resolved for one language. Address and
// contact info fall back to English, the rest does not.
type Localized struct {
	Address             string
	ContactInfo         string
	Directions          string
	Introduction        string
	Description         []Paragraph
	DetailedDescription []Paragraph
}

func (m *Memorial) Localize(lang i18n.Language) Localized {
	return Localized{
		Address:             i18n.Rich.Resolve(m.Addresses(), lang),
		ContactInfo:         i18n.Rich.Resolve(m.ContactInfos(), lang),
		Directions:          richStrict.Resolve(m.AllDirections(), lang),
		Introduction:        richStrict.Resolve(m.Introductions(), lang),
		Description:         i18n.ResolveList(m.Descriptions(), lang, false),
		DetailedDescription: i18n.ResolveList(m.DetailedDescriptions(), lang, false),
	}
}

func (m *Memorial) clone() *Memorial {
	cloned := *m
	cloned.Lon = cloneFloat(m.Lon)
	cloned.Lat = cloneFloat(m.Lat)
	cloned.TitleImageID = cloneInt64(m.TitleImageID)
	cloned.AuthorIDs = append([]uuid.UUID(nil), m.AuthorIDs...)
	cloned.MemorialTypeIDs = append([]int64(nil), m.MemorialTypeIDs...)
	cloned.Description = cloneParagraphs(m.Description)
	cloned.DescriptionDE = cloneParagraphs(m.DescriptionDE)
	cloned.DescriptionCS = cloneParagraphs(m.DescriptionCS)
	cloned.DetailedDescription = cloneParagraphs(m.DetailedDescription)
	cloned.DetailedDescriptionDE = cloneParagraphs(m.DetailedDescriptionDE)
	cloned.DetailedDescriptionCS = cloneParagraphs(m.DetailedDescriptionCS)
	return &cloned
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
