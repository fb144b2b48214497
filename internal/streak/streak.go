package streak

import (
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

// Streak is a maximal contiguous run of dates whose statuses keep a
// streak alive. Both bounds are inclusive.
type Streak struct {
	StartDate time.Time
	EndDate   time.Time
}

// StatusEntry pairs a date with its resolved status. Sequences handed
// to DetectAll must be ordered by date with no gaps.
type StatusEntry struct {
	Date   time.Time
	Status models.HabitStatus
}

// Continues reports whether a status keeps a streak-in-progress alive.
// Skipped and NotCompletedOnVacation are tolerated inside a run without
// contributing completions; NotCompleted, Backlog, Planned and NotDue
// break it.
func Continues(s models.HabitStatus) bool {
	switch s {
	case models.StatusCompleted,
		models.StatusOverCompleted,
		models.StatusOverCompletedOnVacation,
		models.StatusSortedOutBacklog,
		models.StatusSortedOutBacklogOnVacation,
		models.StatusCompletedLater,
		models.StatusAlreadyCompleted,
		models.StatusSkipped,
		models.StatusNotCompletedOnVacation,
		models.StatusOnVacation:
		return true
	}
	return false
}

// starts reports whether a status can open a new streak. Tolerated
// statuses extend runs but never begin one.
func starts(s models.HabitStatus) bool {
	switch s {
	case models.StatusSkipped, models.StatusNotCompletedOnVacation, models.StatusOnVacation:
		return false
	}
	return Continues(s)
}

// DetectAll partitions an ordered status sequence into maximal streaks.
// A breaking status ends the run before it and no new run opens until
// the next status that can start one.
func DetectAll(entries []StatusEntry) []Streak {
	var streaks []Streak
	var current *Streak

	for _, e := range entries {
		switch {
		case current == nil:
			if starts(e.Status) {
				current = &Streak{StartDate: e.Date, EndDate: e.Date}
			}
		case Continues(e.Status):
			current.EndDate = e.Date
		default:
			streaks = append(streaks, *current)
			current = nil
		}
	}
	if current != nil {
		streaks = append(streaks, *current)
	}
	return streaks
}

// Contains reports whether date falls inside the streak's range.
func (s Streak) Contains(date time.Time) bool {
	return !date.Before(s.StartDate) && !date.After(s.EndDate)
}

// DurationInDays is the inclusive length of the streak.
func (s Streak) DurationInDays() int {
	return calendar.DaysBetween(s.StartDate, s.EndDate) + 1
}

// Current returns the streak that is still alive at today. For a
// sequence resolved through today, that is the streak containing today
// or one ending yesterday (today's date may simply not be resolved as a
// continuing status yet); any earlier end implies a breaking date in
// between, because tolerated statuses would have extended the run.
// The second return value is false when no streak qualifies.
func Current(streaks []Streak, today time.Time) (Streak, bool) {
	yesterday := today.AddDate(0, 0, -1)
	for i := len(streaks) - 1; i >= 0; i-- {
		s := streaks[i]
		if s.StartDate.After(today) {
			continue
		}
		if s.Contains(today) || s.Contains(yesterday) {
			return s, true
		}
		return Streak{}, false
	}
	return Streak{}, false
}

// Longest returns the streak with the greatest duration; ties resolve
// to the earliest start date. The second return value is false for an
// empty input.
func Longest(streaks []Streak) (Streak, bool) {
	if len(streaks) == 0 {
		return Streak{}, false
	}
	best := streaks[0]
	for _, s := range streaks[1:] {
		if s.DurationInDays() > best.DurationInDays() ||
			(s.DurationInDays() == best.DurationInDays() && s.StartDate.Before(best.StartDate)) {
			best = s
		}
	}
	return best, true
}
