package calendar

import (
	"fmt"
	"time"
)

// DayFormat is the canonical representation of a calendar date at the
// storage and CLI boundary.
const DayFormat = "2006-01-02"

// Ordinal identifies which occurrence of a weekday within a month a
// month-related weekday rule refers to.
type Ordinal int

const (
	First Ordinal = iota + 1
	Second
	Third
	Fourth
	Fifth
	Last
)

func (o Ordinal) String() string {
	switch o {
	case First:
		return "first"
	case Second:
		return "second"
	case Third:
		return "third"
	case Fourth:
		return "fourth"
	case Fifth:
		return "fifth"
	case Last:
		return "last"
	default:
		return fmt.Sprintf("ordinal(%d)", int(o))
	}
}

// WeekDayMonthRelated is a rule of the form "the Nth <weekday> of the
// month", e.g. the first Monday or the last Sunday.
type WeekDayMonthRelated struct {
	DayOfWeek time.Weekday `json:"day_of_week"`
	Ordinal   Ordinal      `json:"ordinal"`
}

// AnnualDate is a month + day-of-month pair with no year attached.
// February 29 is a valid AnnualDate and matches only on leap years.
type AnnualDate struct {
	Month      time.Month `json:"month"`
	DayOfMonth int        `json:"day_of_month"`
}

// NewAnnualDate validates the day against the month's maximum length,
// using a leap-capable calendar (February accepts 29).
func NewAnnualDate(month time.Month, day int) (AnnualDate, error) {
	if month < time.January || month > time.December {
		return AnnualDate{}, fmt.Errorf("invalid month: %d", int(month))
	}
	max := maxMonthLen(month)
	if day < 1 || day > max {
		return AnnualDate{}, fmt.Errorf("invalid day %d for %s (max %d)", day, month, max)
	}
	return AnnualDate{Month: month, DayOfMonth: day}, nil
}

// maxMonthLen returns the longest possible length of the month across
// all years (29 for February).
func maxMonthLen(month time.Month) int {
	switch month {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// IsLeapYear reports whether year is a leap year in the proleptic
// Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// LastDayOfMonth returns 28, 29, 30 or 31 for the given year and month.
func LastDayOfMonth(year int, month time.Month) int {
	if month == time.February {
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	return maxMonthLen(month)
}

// Date constructs a timezone-naive calendar date, represented as a UTC
// midnight. All date values in this module are built this way.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// FormatDay renders a calendar date as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// DaysBetween returns the number of whole days from a to b (negative if
// b precedes a). Both values are expected to be calendar dates.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// NthWeekdayOfMonth resolves "the Nth <weekday> of the month" to a
// concrete date. For First..Fifth the second return value is false when
// the month has no such occurrence (e.g. no fifth Monday). For Last it
// always succeeds.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, ordinal Ordinal) (time.Time, bool) {
	if ordinal == Last {
		last := Date(year, month, LastDayOfMonth(year, month))
		offset := int(last.Weekday()-weekday+7) % 7
		return last.AddDate(0, 0, -offset), true
	}

	first := Date(year, month, 1)
	offset := int(weekday-first.Weekday()+7) % 7
	day := 1 + offset + 7*(int(ordinal)-1)
	if day > LastDayOfMonth(year, month) {
		return time.Time{}, false
	}
	return Date(year, month, day), true
}

// MatchesWeekDayMonthRelated reports whether date satisfies the rule.
// Matching is non-exclusive: a date that is both the fourth and the last
// occurrence of its weekday satisfies a Fourth rule and a Last rule.
func MatchesWeekDayMonthRelated(date time.Time, rule WeekDayMonthRelated) bool {
	if date.Weekday() != rule.DayOfWeek {
		return false
	}
	resolved, ok := NthWeekdayOfMonth(date.Year(), date.Month(), rule.DayOfWeek, rule.Ordinal)
	return ok && resolved.Equal(date)
}
