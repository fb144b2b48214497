package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
)

// ErrConfiguration marks a schedule that was constructed with an empty
// required due set or otherwise unusable parameters. It is raised when
// the schedule is validated, never during due-ness evaluation.
var ErrConfiguration = errors.New("invalid schedule configuration")

// Schedule is the closed set of recurrence variants. Evaluation happens
// in internal/schedule with a single exhaustive type switch; adding a
// variant means extending that switch and the JSON codec below.
type Schedule interface {
	schedule()

	// Validate rejects malformed configuration at construction time.
	// The due-ness engine assumes validated input.
	Validate() error
}

// EveryDay is due on every date from the routine start onward.
type EveryDay struct{}

// Weekly is due on a fixed set of weekdays, independent of week number.
type Weekly struct {
	DueDaysOfWeek []time.Weekday `json:"due_days_of_week"`
}

// Monthly is due on fixed day-of-month indices, optionally on each
// month's last calendar day, and on Nth-weekday-of-month rules.
type Monthly struct {
	DueDayIndices         []int                          `json:"due_day_indices"`
	IncludeLastDayOfMonth bool                           `json:"include_last_day_of_month"`
	WeekDaysMonthRelated  []calendar.WeekDayMonthRelated `json:"week_days_month_related"`

	// StartFromRoutineStart controls how a consumer anchors month
	// enumeration; it does not change the per-date due predicate.
	StartFromRoutineStart bool `json:"start_from_routine_start"`
}

// PeriodicCustom repeats a period of DaysInPeriod days from the routine
// start date; the 1-based DueDayIndices select due offsets within it.
type PeriodicCustom struct {
	DueDayIndices []int `json:"due_day_indices"`
	DaysInPeriod  int   `json:"days_in_period"`
}

// CustomDate is due on an explicit, finite set of calendar dates.
type CustomDate struct {
	DueDates []time.Time `json:"due_dates"`
}

// Annual is due on a set of month+day pairs every year. A (February, 29)
// entry matches only on actual leap days.
type Annual struct {
	DueDates []calendar.AnnualDate `json:"due_dates"`

	// StartDayOfYear anchors "due year" enumeration for consumers; it
	// is not consulted by the per-date due predicate.
	StartDayOfYear calendar.AnnualDate `json:"start_day_of_year"`
}

func (EveryDay) schedule()       {}
func (Weekly) schedule()         {}
func (Monthly) schedule()        {}
func (PeriodicCustom) schedule() {}
func (CustomDate) schedule()     {}
func (Annual) schedule()         {}

func (EveryDay) Validate() error { return nil }

func (s Weekly) Validate() error {
	if len(s.DueDaysOfWeek) == 0 {
		return fmt.Errorf("%w: weekly schedule has no due weekdays", ErrConfiguration)
	}
	return nil
}

func (s Monthly) Validate() error {
	if len(s.DueDayIndices) == 0 && !s.IncludeLastDayOfMonth && len(s.WeekDaysMonthRelated) == 0 {
		return fmt.Errorf("%w: monthly schedule has no due days", ErrConfiguration)
	}
	for _, idx := range s.DueDayIndices {
		if idx < 1 || idx > 31 {
			return fmt.Errorf("%w: monthly due day index %d out of range 1-31", ErrConfiguration, idx)
		}
	}
	for _, rule := range s.WeekDaysMonthRelated {
		if rule.Ordinal < calendar.First || rule.Ordinal > calendar.Last {
			return fmt.Errorf("%w: invalid weekday ordinal %d", ErrConfiguration, int(rule.Ordinal))
		}
	}
	return nil
}

func (s PeriodicCustom) Validate() error {
	if s.DaysInPeriod < 1 {
		return fmt.Errorf("%w: period length must be at least 1 day, got %d", ErrConfiguration, s.DaysInPeriod)
	}
	if len(s.DueDayIndices) == 0 {
		return fmt.Errorf("%w: periodic schedule has no due offsets", ErrConfiguration)
	}
	for _, idx := range s.DueDayIndices {
		if idx < 1 || idx > s.DaysInPeriod {
			return fmt.Errorf("%w: due offset %d out of range 1-%d", ErrConfiguration, idx, s.DaysInPeriod)
		}
	}
	return nil
}

func (s CustomDate) Validate() error {
	if len(s.DueDates) == 0 {
		return fmt.Errorf("%w: custom date schedule has no due dates", ErrConfiguration)
	}
	return nil
}

func (s Annual) Validate() error {
	if len(s.DueDates) == 0 {
		return fmt.Errorf("%w: annual schedule has no due dates", ErrConfiguration)
	}
	for _, d := range s.DueDates {
		if _, err := calendar.NewAnnualDate(d.Month, d.DayOfMonth); err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}
	return nil
}

// Schedule type discriminators used in the JSON envelope.
const (
	ScheduleTypeEveryDay       = "every_day"
	ScheduleTypeWeekly         = "weekly"
	ScheduleTypeMonthly        = "monthly"
	ScheduleTypePeriodicCustom = "periodic_custom"
	ScheduleTypeCustomDate     = "custom_date"
	ScheduleTypeAnnual         = "annual"
)

// ScheduleTypeName returns the JSON discriminator for a schedule value.
func ScheduleTypeName(s Schedule) string {
	switch s.(type) {
	case EveryDay:
		return ScheduleTypeEveryDay
	case Weekly:
		return ScheduleTypeWeekly
	case Monthly:
		return ScheduleTypeMonthly
	case PeriodicCustom:
		return ScheduleTypePeriodicCustom
	case CustomDate:
		return ScheduleTypeCustomDate
	case Annual:
		return ScheduleTypeAnnual
	default:
		return "unknown"
	}
}

type scheduleEnvelope struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ScheduleSpec wraps a Schedule value so it can live inside
// JSON-serialized records (habit configuration rows and the JSON store).
type ScheduleSpec struct {
	Schedule Schedule
}

func (s ScheduleSpec) MarshalJSON() ([]byte, error) {
	if s.Schedule == nil {
		return nil, fmt.Errorf("cannot serialize empty schedule")
	}
	params, err := json.Marshal(s.Schedule)
	if err != nil {
		return nil, err
	}
	return json.Marshal(scheduleEnvelope{
		Type:   ScheduleTypeName(s.Schedule),
		Params: params,
	})
}

func (s *ScheduleSpec) UnmarshalJSON(data []byte) error {
	var env scheduleEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to parse schedule: %w", err)
	}

	var (
		sched Schedule
		err   error
	)
	switch env.Type {
	case ScheduleTypeEveryDay:
		sched = EveryDay{}
	case ScheduleTypeWeekly:
		var v Weekly
		err = json.Unmarshal(env.Params, &v)
		sched = v
	case ScheduleTypeMonthly:
		var v Monthly
		err = json.Unmarshal(env.Params, &v)
		sched = v
	case ScheduleTypePeriodicCustom:
		var v PeriodicCustom
		err = json.Unmarshal(env.Params, &v)
		sched = v
	case ScheduleTypeCustomDate:
		var v CustomDate
		err = json.Unmarshal(env.Params, &v)
		sched = v
	case ScheduleTypeAnnual:
		var v Annual
		err = json.Unmarshal(env.Params, &v)
		sched = v
	default:
		return fmt.Errorf("unknown schedule type: %q", env.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s schedule: %w", env.Type, err)
	}

	s.Schedule = sched
	return nil
}
