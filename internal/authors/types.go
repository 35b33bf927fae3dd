package authors

import (
	"strings"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Gender of an author. It selects the wording of birth name addenda.
type Gender string

const (
	GenderUnknown Gender = "U"
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
)

// ParseGender accepts U, M or F in any case. Blank is unknown.
func ParseGender(raw string) (Gender, error) {
	switch g := Gender(strings.ToUpper(strings.TrimSpace(raw))); g {
	case "":
		return GenderUnknown, nil
	case GenderUnknown, GenderMale, GenderFemale:
		return g, nil
	}
	return "", ErrGenderInvalid
}

// Author is the variant payload of author pages. Names are live records
// managed next to the page and are not part of revision snapshots.
type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	PageID uuid.UUID `bun:"page_id,pk,type:uuid" json:"-"`
	Gender Gender    `bun:"gender,notnull" json:"gender"`

	Birth DateParts `bun:"embed:date_of_birth_" json:"birth"`
	Death DateParts `bun:"embed:date_of_death_" json:"death"`

	PlaceOfBirth   string `bun:"place_of_birth,notnull" json:"place_of_birth"`
	PlaceOfBirthDE string `bun:"place_of_birth_de,notnull" json:"place_of_birth_de"`
	PlaceOfBirthCS string `bun:"place_of_birth_cs,notnull" json:"place_of_birth_cs"`
	PlaceOfDeath   string `bun:"place_of_death,notnull" json:"place_of_death"`
	PlaceOfDeathDE string `bun:"place_of_death_de,notnull" json:"place_of_death_de"`
	PlaceOfDeathCS string `bun:"place_of_death_cs,notnull" json:"place_of_death_cs"`

	TitleImageID *int64 `bun:"title_image_id" json:"title_image_id,omitempty"`

	LanguageIDs []int64 `bun:"-" json:"language_ids"`
	GenreIDs    []int64 `bun:"-" json:"genre_ids"`
	PeriodIDs   []int64 `bun:"-" json:"period_ids"`

	// Names replaces the live names when set. Nil keeps them.
	Names []*Name `bun:"-" json:"-"`
}

func (a *Author) PlacesOfBirth() i18n.Text {
	return i18n.Text{EN: a.PlaceOfBirth, DE: a.PlaceOfBirthDE, CS: a.PlaceOfBirthCS}
}

func (a *Author) PlacesOfDeath() i18n.Text {
	return i18n.Text{EN: a.PlaceOfDeath, DE: a.PlaceOfDeathDE, CS: a.PlaceOfDeathCS}
}

// Age is the number of full years between birth and death. It is only
// defined when both dates are complete.
func (a *Author) Age() (int, bool) {
	if !a.Birth.Complete() || !a.Death.Complete() {
		return 0, false
	}
	age := *a.Death.Year - *a.Birth.Year
	if *a.Death.Month < *a.Birth.Month || (*a.Death.Month == *a.Birth.Month && *a.Death.Day < *a.Birth.Day) {
		age--
	}
	return age, true
}

// Name is one ordered name of an author. The first name by sort order
// gives the page its title.
type Name struct {
	bun.BaseModel `bun:"table:author_names,alias:an"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	AuthorID    uuid.UUID `bun:"author_id,notnull,type:uuid" json:"author_id"`
	SortOrder   int       `bun:"sort_order,notnull" json:"sort_order"`
	IsPseudonym bool      `bun:"is_pseudonym,notnull" json:"is_pseudonym"`

	Title       string `bun:"title,notnull" json:"title"`
	TitleDE     string `bun:"title_de,notnull" json:"title_de"`
	TitleCS     string `bun:"title_cs,notnull" json:"title_cs"`
	FirstName   string `bun:"first_name,notnull" json:"first_name"`
	FirstNameDE string `bun:"first_name_de,notnull" json:"first_name_de"`
	FirstNameCS string `bun:"first_name_cs,notnull" json:"first_name_cs"`
	LastName    string `bun:"last_name,notnull" json:"last_name"`
	LastNameDE  string `bun:"last_name_de,notnull" json:"last_name_de"`
	LastNameCS  string `bun:"last_name_cs,notnull" json:"last_name_cs"`
	BirthName   string `bun:"birth_name,notnull" json:"birth_name"`
	BirthNameDE string `bun:"birth_name_de,notnull" json:"birth_name_de"`
	BirthNameCS string `bun:"birth_name_cs,notnull" json:"birth_name_cs"`
}

func (n *Name) Titles() i18n.Text {
	return i18n.Text{EN: n.Title, DE: n.TitleDE, CS: n.TitleCS}
}

func (n *Name) FirstNames() i18n.Text {
	return i18n.Text{EN: n.FirstName, DE: n.FirstNameDE, CS: n.FirstNameCS}
}

func (n *Name) LastNames() i18n.Text {
	return i18n.Text{EN: n.LastName, DE: n.LastNameDE, CS: n.LastNameCS}
}

func (n *Name) BirthNames() i18n.Text {
	return i18n.Text{EN: n.BirthName, DE: n.BirthNameDE, CS: n.BirthNameCS}
}

func (n *Name) clone() *Name {
	if n == nil {
		return nil
	}
	cloned := *n
	return &cloned
}
