package status

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

var (
	start = calendar.Date(2024, time.January, 1)
	today = calendar.Date(2024, time.January, 10)
)

func day(n int) time.Time { return start.AddDate(0, 0, n-1) } // day(1) == Jan 1
func key(n int) string    { return calendar.FormatDay(day(n)) }

func alwaysDue(time.Time) bool { return true }

func baseRange() RangeInput {
	return RangeInput{
		RoutineStart:           start,
		From:                   start,
		To:                     calendar.Date(2024, time.January, 14),
		Today:                  today,
		RequiredCompletions:    1,
		BacklogEnabled:         true,
		CompletingAheadEnabled: true,
		IsDue:                  alwaysDue,
		Completions:            map[string]float64{},
	}
}

func TestResolve_SingleDateHistorical(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want models.HabitStatus
	}{
		{"due and completed", Input{Date: day(2), Today: today, Due: true, TimesCompleted: 1, RequiredCompletions: 1}, models.StatusCompleted},
		{"due partial counts as completed", Input{Date: day(2), Today: today, Due: true, TimesCompleted: 0.5, RequiredCompletions: 2}, models.StatusCompleted},
		{"due over-completed", Input{Date: day(2), Today: today, Due: true, TimesCompleted: 3, RequiredCompletions: 1}, models.StatusOverCompleted},
		{"due missed", Input{Date: day(2), Today: today, Due: true, RequiredCompletions: 1}, models.StatusNotCompleted},
		{"off schedule", Input{Date: day(2), Today: today, Due: false, RequiredCompletions: 1}, models.StatusSkipped},
		{"off schedule completed", Input{Date: day(2), Today: today, Due: false, TimesCompleted: 1, RequiredCompletions: 1}, models.StatusOverCompleted},
		{"vacation not completed", Input{Date: day(2), Today: today, Due: true, RequiredCompletions: 1, OnVacation: true, VacationRecorded: true}, models.StatusNotCompletedOnVacation},
		{"vacation over-completed", Input{Date: day(2), Today: today, Due: true, TimesCompleted: 1, RequiredCompletions: 1, OnVacation: true, VacationRecorded: true}, models.StatusOverCompletedOnVacation},
		{"today resolves historically", Input{Date: today, Today: today, Due: true, RequiredCompletions: 1}, models.StatusNotCompleted},
	}
	for _, c := range cases {
		got, err := Resolve(c.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestResolve_SingleDatePlanning(t *testing.T) {
	future := today.AddDate(0, 0, 5)
	cases := []struct {
		name string
		in   Input
		want models.HabitStatus
	}{
		{"future due", Input{Date: future, Today: today, Due: true, RequiredCompletions: 1}, models.StatusPlanned},
		{"future not due", Input{Date: future, Today: today, Due: false, RequiredCompletions: 1}, models.StatusNotDue},
		{"future already completed", Input{Date: future, Today: today, Due: true, TimesCompleted: 1, RequiredCompletions: 1}, models.StatusAlreadyCompleted},
		{"future on vacation", Input{Date: future, Today: today, Due: true, RequiredCompletions: 1, OnVacation: true, VacationRecorded: true}, models.StatusOnVacation},
	}
	for _, c := range cases {
		got, err := Resolve(c.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestResolve_InvalidState(t *testing.T) {
	_, err := Resolve(Input{Date: day(2), Today: today, Due: true, RequiredCompletions: 0})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("non-positive required completions: got %v, want ErrInvalidState", err)
	}

	_, err = Resolve(Input{Date: day(2), Today: today, Due: true, RequiredCompletions: 1, OnVacation: true})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("vacation flag without record: got %v, want ErrInvalidState", err)
	}
}

func TestResolveRange_CompletedAndMissed(t *testing.T) {
	in := baseRange()
	in.Completions = map[string]float64{
		key(1): 1, // completed
		key(3): 2, // over-completed
	}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	want := map[string]models.HabitStatus{
		key(1):  models.StatusCompleted,
		key(2):  models.StatusNotCompleted,
		key(3):  models.StatusOverCompleted,
		key(10): models.StatusNotCompleted, // today, still unresolved
		key(11): models.StatusPlanned,
		key(14): models.StatusPlanned,
	}
	for k, w := range want {
		if statuses[k] != w {
			t.Errorf("%s: got %s, want %s", k, statuses[k], w)
		}
	}
}

func TestResolveRange_BacklogCompensation(t *testing.T) {
	in := baseRange()
	// Due Mon/Thu only; miss Jan 1 (due), complete on Jan 2 (not due).
	in.IsDue = func(d time.Time) bool { return d.Weekday() == time.Monday || d.Weekday() == time.Thursday }
	in.Completions = map[string]float64{
		key(2): 1, // Tuesday, not due
	}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(1)] != models.StatusCompletedLater {
		t.Errorf("missed due date: got %s, want completed_later", statuses[key(1)])
	}
	if statuses[key(2)] != models.StatusSortedOutBacklog {
		t.Errorf("compensating date: got %s, want sorted_out_backlog", statuses[key(2)])
	}
}

func TestResolveRange_BacklogCompensatesEarliestFirst(t *testing.T) {
	in := baseRange()
	// Due on days 1, 2, 3; completions on non-due days 5 and 6.
	in.IsDue = func(d time.Time) bool { return !d.After(day(3)) }
	in.Completions = map[string]float64{
		key(5): 1,
		key(6): 1,
	}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(1)] != models.StatusCompletedLater {
		t.Errorf("day 1: got %s, want completed_later", statuses[key(1)])
	}
	if statuses[key(2)] != models.StatusCompletedLater {
		t.Errorf("day 2: got %s, want completed_later", statuses[key(2)])
	}
	if statuses[key(3)] != models.StatusNotCompleted {
		t.Errorf("day 3: got %s, want not_completed (only two compensations)", statuses[key(3)])
	}
	if statuses[key(5)] != models.StatusSortedOutBacklog || statuses[key(6)] != models.StatusSortedOutBacklog {
		t.Errorf("compensating days: got %s / %s", statuses[key(5)], statuses[key(6)])
	}
}

func TestResolveRange_BacklogDisabled(t *testing.T) {
	in := baseRange()
	in.BacklogEnabled = false
	in.IsDue = func(d time.Time) bool { return d.Equal(day(1)) }
	in.Completions = map[string]float64{key(2): 1}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(1)] != models.StatusNotCompleted {
		t.Errorf("day 1: got %s, want not_completed with backlog disabled", statuses[key(1)])
	}
	if statuses[key(2)] != models.StatusOverCompleted {
		t.Errorf("day 2: got %s, want over_completed with backlog disabled", statuses[key(2)])
	}
}

func TestResolveRange_SortedOutBacklogOnVacation(t *testing.T) {
	in := baseRange()
	in.IsDue = func(d time.Time) bool { return d.Equal(day(1)) }
	in.OnVacation = func(d time.Time) bool { return d.Equal(day(3)) }
	in.Completions = map[string]float64{key(3): 1}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(1)] != models.StatusCompletedLater {
		t.Errorf("day 1: got %s, want completed_later", statuses[key(1)])
	}
	if statuses[key(3)] != models.StatusSortedOutBacklogOnVacation {
		t.Errorf("day 3: got %s, want sorted_out_backlog_on_vacation", statuses[key(3)])
	}
}

func TestResolveRange_VacationStatuses(t *testing.T) {
	in := baseRange()
	in.OnVacation = func(d time.Time) bool { return !d.Before(day(2)) && !d.After(day(4)) }
	in.Completions = map[string]float64{key(3): 1}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(2)] != models.StatusNotCompletedOnVacation {
		t.Errorf("day 2: got %s, want not_completed_on_vacation", statuses[key(2)])
	}
	if statuses[key(3)] != models.StatusOverCompletedOnVacation {
		t.Errorf("day 3: got %s, want over_completed_on_vacation", statuses[key(3)])
	}
	// A due date skipped on vacation never enters the backlog.
	if statuses[key(5)] != models.StatusNotCompleted {
		t.Errorf("day 5: got %s, want not_completed", statuses[key(5)])
	}
}

func TestResolveRange_CompletingAhead(t *testing.T) {
	in := baseRange()
	// Due on days 2 and 5 only; day 1 over-completion banks a credit.
	in.IsDue = func(d time.Time) bool { return d.Equal(day(2)) || d.Equal(day(5)) }
	in.Completions = map[string]float64{key(1): 1}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(1)] != models.StatusOverCompleted {
		t.Errorf("day 1: got %s, want over_completed", statuses[key(1)])
	}
	if statuses[key(2)] != models.StatusAlreadyCompleted {
		t.Errorf("day 2: got %s, want already_completed (pre-credited)", statuses[key(2)])
	}
	if statuses[key(5)] != models.StatusNotCompleted {
		t.Errorf("day 5: got %s, want not_completed (credit spent)", statuses[key(5)])
	}
}

func TestResolveRange_PlanningStatuses(t *testing.T) {
	in := baseRange()
	in.IsDue = func(d time.Time) bool { return d.Weekday() == time.Monday }
	in.OnVacation = func(d time.Time) bool { return d.Equal(day(12)) }
	in.Completions = map[string]float64{key(13): 1}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	// 2024-01-08 was a due Monday with no completion, so backlog is
	// outstanding and future non-due days surface it.
	if statuses[key(11)] != models.StatusBacklog {
		t.Errorf("day 11: got %s, want backlog", statuses[key(11)])
	}
	if statuses[key(12)] != models.StatusOnVacation {
		t.Errorf("day 12: got %s, want on_vacation", statuses[key(12)])
	}
	if statuses[key(13)] != models.StatusAlreadyCompleted {
		t.Errorf("day 13: got %s, want already_completed", statuses[key(13)])
	}
	// 2024-01-15 falls outside To; 2024-01-14 is a Sunday, not due.
	if statuses[key(14)] != models.StatusBacklog {
		t.Errorf("day 14: got %s, want backlog", statuses[key(14)])
	}
}

func TestResolveRange_FuturePlannedWhenNoBacklog(t *testing.T) {
	in := baseRange()
	in.To = day(15)
	in.IsDue = func(d time.Time) bool { return d.Weekday() == time.Monday }
	in.Completions = map[string]float64{
		key(1): 1, // Monday Jan 1
		key(8): 1, // Monday Jan 8
	}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(11)] != models.StatusNotDue {
		t.Errorf("future Thursday: got %s, want not_due", statuses[key(11)])
	}
	if statuses[key(14)] != models.StatusNotDue { // Sunday
		t.Errorf("future Sunday: got %s, want not_due", statuses[key(14)])
	}
	if statuses[key(15)] != models.StatusPlanned { // next Monday
		t.Errorf("future Monday: got %s, want planned", statuses[key(15)])
	}
}

func TestResolveRange_DatesBeforeRoutineStart(t *testing.T) {
	in := baseRange()
	in.From = start.AddDate(0, 0, -3)

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	for n := -3; n < 0; n++ {
		k := calendar.FormatDay(start.AddDate(0, 0, n))
		if statuses[k] != models.StatusNotDue {
			t.Errorf("%s precedes routine start: got %s, want not_due", k, statuses[k])
		}
	}
}

func TestResolveRange_LaterCompletionOutsideWindowStillCompensates(t *testing.T) {
	in := baseRange()
	in.To = day(3) // window ends before the compensating completion
	in.IsDue = func(d time.Time) bool { return d.Equal(day(1)) }
	in.Completions = map[string]float64{key(6): 1}

	statuses, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if statuses[key(1)] != models.StatusCompletedLater {
		t.Errorf("day 1: got %s, want completed_later via completion outside window", statuses[key(1)])
	}
}

func TestResolveRange_InvalidState(t *testing.T) {
	in := baseRange()
	in.RequiredCompletions = 0
	if _, err := ResolveRange(in); !errors.Is(err, ErrInvalidState) {
		t.Errorf("non-positive required: got %v, want ErrInvalidState", err)
	}

	in = baseRange()
	in.IsDue = nil
	if _, err := ResolveRange(in); !errors.Is(err, ErrInvalidState) {
		t.Errorf("nil due predicate: got %v, want ErrInvalidState", err)
	}

	in = baseRange()
	in.To = in.From.AddDate(0, 0, -1)
	if _, err := ResolveRange(in); !errors.Is(err, ErrInvalidState) {
		t.Errorf("inverted range: got %v, want ErrInvalidState", err)
	}
}

func TestResolveRange_Idempotence(t *testing.T) {
	in := baseRange()
	in.IsDue = func(d time.Time) bool { return d.Weekday() != time.Sunday }
	in.Completions = map[string]float64{key(1): 1, key(4): 2, key(7): 0.5}
	in.OnVacation = func(d time.Time) bool { return d.Equal(day(5)) }

	first, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	second, err := ResolveRange(in)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result sizes differ: %d vs %d", len(first), len(second))
	}
	for k, v := range first {
		if second[k] != v {
			t.Errorf("%s: %s vs %s", k, v, second[k])
		}
	}
}
