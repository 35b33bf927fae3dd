package i18n

import (
	"strconv"
	"time"

	"github.com/goodsign/monday"
)

type dateLayouts struct {
	locale    monday.Locale
	full      string
	yearMonth string
}

var layouts = map[Language]dateLayouts{
	EN: {locale: monday.LocaleEnUS, full: "January 2, 2006", yearMonth: "January 2006"},
	DE: {locale: monday.LocaleDeDE, full: "2. January 2006", yearMonth: "January 2006"},
	CS: {locale: monday.LocaleCsCZ, full: "2. January 2006", yearMonth: "January 2006"},
}

// FormatDate renders a possibly partial date: a bare year, a localized
// "month year", or a localized full date. Without a year the result is empty.
func FormatDate(lang Language, year, month, day *int) string {
	if year == nil {
		return ""
	}
	if month == nil || *month < 1 || *month > 12 {
		return strconv.Itoa(*year)
	}
	layout, ok := layouts[lang]
	if !ok {
		layout = layouts[Base]
	}
	if day == nil {
		t := time.Date(*year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
		return monday.Format(t, layout.yearMonth, layout.locale)
	}
	t := time.Date(*year, time.Month(*month), *day, 0, 0, 0, 0, time.UTC)
	return monday.Format(t, layout.full, layout.locale)
}
