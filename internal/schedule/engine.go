package schedule

import (
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

// Engine evaluates whether a habit's schedule makes a concrete calendar
// date due. It is stateless; every query carries the routine start date
// as the anchor for routine-relative variants.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// IsDue decides whether date is a due date under the given schedule.
// Dates before routineStartDate are never due, regardless of variant.
// The schedule is assumed validated (see models.Schedule.Validate);
// IsDue itself never fails.
func (e *Engine) IsDue(date, routineStartDate time.Time, s models.Schedule) bool {
	if date.Before(routineStartDate) {
		return false
	}

	switch v := s.(type) {
	case models.EveryDay:
		return true

	case models.Weekly:
		for _, wd := range v.DueDaysOfWeek {
			if date.Weekday() == wd {
				return true
			}
		}
		return false

	case models.Monthly:
		for _, idx := range v.DueDayIndices {
			if date.Day() == idx {
				return true
			}
		}
		if v.IncludeLastDayOfMonth && date.Day() == calendar.LastDayOfMonth(date.Year(), date.Month()) {
			return true
		}
		for _, rule := range v.WeekDaysMonthRelated {
			if calendar.MatchesWeekDayMonthRelated(date, rule) {
				return true
			}
		}
		return false

	case models.PeriodicCustom:
		// Offsets in the due set are 1-based within the period.
		offset := calendar.DaysBetween(routineStartDate, date) % v.DaysInPeriod
		for _, idx := range v.DueDayIndices {
			if offset == idx-1 {
				return true
			}
		}
		return false

	case models.CustomDate:
		for _, due := range v.DueDates {
			if due.Equal(date) {
				return true
			}
		}
		return false

	case models.Annual:
		// An AnnualDate of (February, 29) matches only actual leap
		// days; it never shifts to February 28.
		for _, due := range v.DueDates {
			if date.Month() == due.Month && date.Day() == due.DayOfMonth {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// DueDates enumerates the due dates in [from, to] inclusive.
func (e *Engine) DueDates(from, to, routineStartDate time.Time, s models.Schedule) []time.Time {
	var due []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if e.IsDue(d, routineStartDate, s) {
			due = append(due, d)
		}
	}
	return due
}
