package authors

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/i18n"
)

// DateParts is a partially known date. Each part may be missing.
type DateParts struct {
	Year  *int `bun:"year" json:"year,omitempty"`
	Month *int `bun:"month" json:"month,omitempty"`
	Day   *int `bun:"day" json:"day,omitempty"`
}

// Date builds DateParts from plain values; zero means unknown.
func Date(year, month, day int) DateParts {
	var d DateParts
	if year > 0 {
		d.Year = &year
	}
	if month > 0 {
		d.Month = &month
	}
	if day > 0 {
		d.Day = &day
	}
	return d
}

// Complete reports whether year, month and day are all known.
func (d DateParts) Complete() bool {
	return positive(d.Year) && positive(d.Month) && positive(d.Day)
}

// Time returns the date when it is complete.
func (d DateParts) Time() (time.Time, bool) {
	if !d.Complete() {
		return time.Time{}, false
	}
	return time.Date(*d.Year, time.Month(*d.Month), *d.Day, 0, 0, 0, 0, time.UTC), true
}

// Format renders the date in the language of ctx.
func (d DateParts) Format(ctx context.Context) string {
	return i18n.FormatDate(i18n.LanguageFrom(ctx), d.Year, d.Month, d.Day)
}

var (
	errFebruary    = validation.NewError("validation_date_february", "February cannot have more than 29 days")
	errDayOfMonth  = validation.NewError("validation_date_day_range", "day is out of range for the indicated month")
	errInvalidDate = validation.NewError("validation_date_invalid", "is not a valid calendar date")
)

// Validate checks the part ranges and, when month and day are both known,
// that the day fits the month. Without a year the check is the coarse rule
// used by the archive: February allows 29 days and even months 30.
func (d DateParts) Validate() error {
	errs := validation.Errors{
		"year":  validation.Validate(d.Year, validation.Min(0), validation.Max(9999)),
		"month": validation.Validate(d.Month, validation.Min(1), validation.Max(12)),
		"day":   validation.Validate(d.Day, validation.Min(1), validation.Max(31)),
	}
	if err := errs.Filter(); err != nil {
		return err
	}
	switch {
	case d.Complete():
		t, _ := d.Time()
		if t.Day() != *d.Day || int(t.Month()) != *d.Month {
			return validation.Errors{"day": errInvalidDate}
		}
	case d.Month != nil && d.Day != nil:
		if *d.Month == 2 && *d.Day > 29 {
			return validation.Errors{"day": errFebruary}
		}
		if *d.Month%2 == 0 && *d.Day > 30 {
			return validation.Errors{"day": errDayOfMonth}
		}
	}
	return nil
}

func positive(v *int) bool {
	return v != nil && *v > 0
}
