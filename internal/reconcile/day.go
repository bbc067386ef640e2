package reconcile

import (
	"fmt"
	"strings"
	"time"

	"payoutrecon/internal/model"
)

// DayLayout is the textual form of a Day.
const DayLayout = "2006-01-02"

// Day is a calendar date without a location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date of t as observed in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return DayOf(t, time.UTC), nil
}

// Start returns midnight of d in loc.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// End returns the last second of d in loc.
func (d Day) End(loc *time.Location) time.Time {
	return d.AddDays(1).Start(loc).Add(-time.Second)
}

// AddDays returns d shifted by n days.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Start(time.UTC).AddDate(0, 0, n), time.UTC)
}

// Before reports whether d is earlier than o.
func (d Day) Before(o Day) bool {
	return d.Start(time.UTC).Before(o.Start(time.UTC))
}

// DaysUntil returns the number of days from d to o.
func (d Day) DaysUntil(o Day) int {
	return int(o.Start(time.UTC).Sub(d.Start(time.UTC)).Hours() / 24)
}

// IsZero reports whether d is unset.
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Day) String() string {
	return d.Start(time.UTC).Format(DayLayout)
}

// LoadTimezone resolves a timezone name. "utc" and "" mean UTC, "shop" means
// the configured shop timezone.
func LoadTimezone(name, shop string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utc":
		return time.UTC, nil
	case "shop":
		name = shop
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// TimezoneLabel is the suffix used in report file names.
func TimezoneLabel(loc *time.Location) string {
	if loc == time.UTC || loc.String() == "UTC" {
		return "UTC"
	}
	return "ShopTimezone"
}

// PayoutDay is the calendar day of a payout row in loc. Date-only values are
// calendar dates already and are never shifted. Treating them as UTC midnight
// and converting to loc would move every date-only payout to the previous day
// in zones west of UTC such as US/Eastern.
func PayoutDay(p model.PayoutTransaction, loc *time.Location) Day {
	if p.DateOnly {
		return DayOf(p.Date, time.UTC)
	}
	return DayOf(p.Date, loc)
}
