package models

// HabitStatus is the derived state of one habit on one calendar date.
// It is recomputed on demand from completion and vacation records,
// never stored.
type HabitStatus string

// Planning statuses apply to dates strictly after "today".
const (
	StatusPlanned    HabitStatus = "planned"
	StatusBacklog    HabitStatus = "backlog"
	StatusNotDue     HabitStatus = "not_due"
	StatusOnVacation HabitStatus = "on_vacation"
)

// Historical statuses apply to dates at or before "today".
// AlreadyCompleted appears in both families: a future date that already
// has a completion recorded, or a past due date pre-credited by an
// earlier over-completion.
const (
	StatusAlreadyCompleted           HabitStatus = "already_completed"
	StatusNotCompleted               HabitStatus = "not_completed"
	StatusCompleted                  HabitStatus = "completed"
	StatusOverCompleted              HabitStatus = "over_completed"
	StatusOverCompletedOnVacation    HabitStatus = "over_completed_on_vacation"
	StatusSortedOutBacklog           HabitStatus = "sorted_out_backlog"
	StatusSortedOutBacklogOnVacation HabitStatus = "sorted_out_backlog_on_vacation"
	StatusSkipped                    HabitStatus = "skipped"
	StatusNotCompletedOnVacation     HabitStatus = "not_completed_on_vacation"
	StatusCompletedLater             HabitStatus = "completed_later"
)

// IsPlanning reports whether the status belongs to the planning family.
func (s HabitStatus) IsPlanning() bool {
	switch s {
	case StatusPlanned, StatusBacklog, StatusNotDue, StatusOnVacation, StatusAlreadyCompleted:
		return true
	}
	return false
}

// IsHistorical reports whether the status belongs to the historical family.
func (s HabitStatus) IsHistorical() bool {
	switch s {
	case StatusNotCompleted, StatusCompleted, StatusOverCompleted,
		StatusOverCompletedOnVacation, StatusSortedOutBacklog,
		StatusSortedOutBacklogOnVacation, StatusSkipped,
		StatusNotCompletedOnVacation, StatusCompletedLater,
		StatusAlreadyCompleted:
		return true
	}
	return false
}
