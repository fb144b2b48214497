package cli

import (
	"testing"
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

func TestParseWeekdays(t *testing.T) {
	wds, err := parseWeekdays("mon,Thursday, 0")
	if err != nil {
		t.Fatalf("parseWeekdays failed: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Thursday, time.Sunday}
	if len(wds) != len(want) {
		t.Fatalf("got %d weekdays, want %d", len(wds), len(want))
	}
	for i := range want {
		if wds[i] != want[i] {
			t.Errorf("weekday %d = %v, want %v", i, wds[i], want[i])
		}
	}

	if _, err := parseWeekdays("funday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
	if _, err := parseWeekdays("7"); err == nil {
		t.Error("expected error for out-of-range weekday number")
	}
}

func TestBuildScheduleVariants(t *testing.T) {
	cases := []struct {
		name string
		cmd  HabitAddCmd
		want string
	}{
		{"every day", HabitAddCmd{Schedule: "every_day"}, "models.EveryDay"},
		{"weekly", HabitAddCmd{Schedule: "weekly", Weekdays: "mon,thu"}, "models.Weekly"},
		{"monthly days", HabitAddCmd{Schedule: "monthly", MonthDays: "1,15"}, "models.Monthly"},
		{"monthly last day", HabitAddCmd{Schedule: "monthly", LastDay: true}, "models.Monthly"},
		{"monthly ordinal", HabitAddCmd{Schedule: "monthly", MonthlyWeekdays: "first:mon,last:fri"}, "models.Monthly"},
		{"periodic", HabitAddCmd{Schedule: "periodic", Period: 10, PeriodDays: "1,5"}, "models.PeriodicCustom"},
		{"custom dates", HabitAddCmd{Schedule: "custom_dates", Dates: "2024-06-01,2024-07-15"}, "models.CustomDate"},
		{"annual", HabitAddCmd{Schedule: "annual", AnnualDates: "02-29,12-25"}, "models.Annual"},
	}

	for _, tc := range cases {
		sched, err := tc.cmd.buildSchedule()
		if err != nil {
			t.Errorf("%s: buildSchedule failed: %v", tc.name, err)
			continue
		}
		if err := sched.Validate(); err != nil {
			t.Errorf("%s: built schedule does not validate: %v", tc.name, err)
		}
	}
}

func TestBuildScheduleRejectsIncompleteFlags(t *testing.T) {
	cases := []HabitAddCmd{
		{Schedule: "weekly"},
		{Schedule: "periodic", Period: 7},
		{Schedule: "custom_dates"},
		{Schedule: "annual"},
		{Schedule: "fortnightly"},
		{Schedule: "weekly", Weekdays: "blursday"},
		{Schedule: "custom_dates", Dates: "June 1st"},
		{Schedule: "annual", AnnualDates: "13-01"},
	}

	for _, cmd := range cases {
		if _, err := cmd.buildSchedule(); err == nil {
			t.Errorf("buildSchedule(%+v) should fail", cmd)
		}
	}
}

func TestBuildScheduleMonthlyOrdinals(t *testing.T) {
	cmd := HabitAddCmd{Schedule: "monthly", MonthlyWeekdays: "second:tue"}
	sched, err := cmd.buildSchedule()
	if err != nil {
		t.Fatalf("buildSchedule failed: %v", err)
	}

	m, ok := sched.(models.Monthly)
	if !ok {
		t.Fatalf("expected Monthly, got %T", sched)
	}
	if len(m.WeekDaysMonthRelated) != 1 {
		t.Fatalf("expected 1 ordinal rule, got %d", len(m.WeekDaysMonthRelated))
	}
	rule := m.WeekDaysMonthRelated[0]
	if rule.DayOfWeek != time.Tuesday || rule.Ordinal != calendar.Second {
		t.Errorf("unexpected rule: %+v", rule)
	}
}

func TestBuildScheduleAnnualLeapDay(t *testing.T) {
	cmd := HabitAddCmd{Schedule: "annual", AnnualDates: "02-29"}
	sched, err := cmd.buildSchedule()
	if err != nil {
		t.Fatalf("buildSchedule failed: %v", err)
	}

	a, ok := sched.(models.Annual)
	if !ok {
		t.Fatalf("expected Annual, got %T", sched)
	}
	if a.DueDates[0].Month != time.February || a.DueDates[0].DayOfMonth != 29 {
		t.Errorf("leap day not preserved: %+v", a.DueDates[0])
	}
}

func TestFormatSchedule(t *testing.T) {
	cases := []struct {
		sched models.Schedule
		want  string
	}{
		{models.EveryDay{}, "every day"},
		{models.Weekly{DueDaysOfWeek: []time.Weekday{time.Monday, time.Friday}}, "weekly on Mon,Fri"},
		{models.PeriodicCustom{DaysInPeriod: 10, DueDayIndices: []int{1, 5}}, "every 10 days on day 1,5"},
	}
	for _, tc := range cases {
		if got := formatSchedule(tc.sched); got != tc.want {
			t.Errorf("formatSchedule(%T) = %q, want %q", tc.sched, got, tc.want)
		}
	}
}

func TestFindHabitByName(t *testing.T) {
	ctx := setupTestContext(t)
	habit := addTestHabit(t, ctx, "find-test-id")

	byID, err := findHabit(ctx.Store, habit.ID)
	if err != nil || byID.ID != habit.ID {
		t.Errorf("findHabit by ID failed: %v", err)
	}

	byName, err := findHabit(ctx.Store, habit.Name)
	if err != nil || byName.ID != habit.ID {
		t.Errorf("findHabit by name failed: %v", err)
	}

	if _, err := findHabit(ctx.Store, "no such habit"); err == nil {
		t.Error("findHabit should fail for unknown reference")
	}
}
