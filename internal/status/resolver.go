package status

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

// ErrInvalidState marks a resolution request with contradictory inputs:
// a vacation flag without a vacation record, or a non-positive required
// completion count.
var ErrInvalidState = errors.New("invalid resolver state")

// Input carries everything needed to resolve a single date in
// isolation. Due-ness is precomputed by the caller; the resolver never
// re-evaluates schedules.
type Input struct {
	Date  time.Time
	Today time.Time

	Due            bool
	TimesCompleted float64

	// RequiredCompletions is the habit's sessions-per-day target.
	RequiredCompletions float64

	OnVacation bool
	// VacationRecorded must be true whenever OnVacation is; a vacation
	// flag with no backing record is contradictory input.
	VacationRecorded bool
}

// Resolve derives the status of a single date. This single-date
// contract is a simplification valid only when no later-date
// compensation data exists: it can never produce CompletedLater,
// SortedOutBacklog, Backlog, or the ahead-credited AlreadyCompleted,
// all of which require the cross-date fold in ResolveRange.
func Resolve(in Input) (models.HabitStatus, error) {
	if in.RequiredCompletions <= 0 {
		return "", fmt.Errorf("%w: required completions must be positive, got %v", ErrInvalidState, in.RequiredCompletions)
	}
	if in.OnVacation && !in.VacationRecorded {
		return "", fmt.Errorf("%w: vacation flag set for %s without a vacation record", ErrInvalidState, calendar.FormatDay(in.Date))
	}

	if in.Date.After(in.Today) {
		return resolvePlanning(in.Due, in.TimesCompleted, in.OnVacation, false), nil
	}
	return resolveHistorical(in.Due, in.TimesCompleted, in.RequiredCompletions, in.OnVacation), nil
}

func resolvePlanning(due bool, count float64, onVacation, backlogOutstanding bool) models.HabitStatus {
	switch {
	case onVacation:
		return models.StatusOnVacation
	case count > 0:
		return models.StatusAlreadyCompleted
	case due:
		return models.StatusPlanned
	case backlogOutstanding:
		return models.StatusBacklog
	default:
		return models.StatusNotDue
	}
}

// resolveHistorical is the compensation-free decision table shared by
// Resolve and the fold in ResolveRange.
func resolveHistorical(due bool, count, required float64, onVacation bool) models.HabitStatus {
	if onVacation {
		if count >= required {
			return models.StatusOverCompletedOnVacation
		}
		return models.StatusNotCompletedOnVacation
	}
	if !due {
		if count > 0 {
			return models.StatusOverCompleted
		}
		return models.StatusSkipped
	}
	switch {
	case count == 0:
		return models.StatusNotCompleted
	case count > required:
		return models.StatusOverCompleted
	default:
		// Any positive count up to the requirement counts as completed.
		return models.StatusCompleted
	}
}

// RangeInput describes a batch resolution over [From, To].
type RangeInput struct {
	// RoutineStart anchors the fold; compensation state accumulates
	// from here even when From is later.
	RoutineStart time.Time
	From, To     time.Time
	Today        time.Time

	RequiredCompletions float64

	// BacklogEnabled lets missed due dates be compensated by later
	// non-due completions. CompletingAheadEnabled lets surplus
	// completions pre-credit upcoming due dates.
	BacklogEnabled         bool
	CompletingAheadEnabled bool

	// IsDue is the precomputed due predicate (schedule engine output).
	IsDue func(date time.Time) bool

	// Completions maps YYYY-MM-DD to the recorded count for that day.
	Completions map[string]float64

	// OnVacation reports whether a date is covered by a vacation record.
	OnVacation func(date time.Time) bool
}

// ResolveRange derives a status for every date in [From, To]. This is
// the authoritative contract: it runs the forward fold that resolves
// backlog compensation (a completion on a later non-due date marks the
// earliest unresolved missed due date as CompletedLater and itself as
// SortedOutBacklog) and ahead credits (surplus completions turning a
// later due date into AlreadyCompleted). Keys are YYYY-MM-DD.
func ResolveRange(in RangeInput) (map[string]models.HabitStatus, error) {
	if in.RequiredCompletions <= 0 {
		return nil, fmt.Errorf("%w: required completions must be positive, got %v", ErrInvalidState, in.RequiredCompletions)
	}
	if in.IsDue == nil {
		return nil, fmt.Errorf("%w: due predicate is required", ErrInvalidState)
	}
	if in.To.Before(in.From) {
		return nil, fmt.Errorf("%w: range end %s precedes start %s", ErrInvalidState,
			calendar.FormatDay(in.To), calendar.FormatDay(in.From))
	}
	onVacation := in.OnVacation
	if onVacation == nil {
		onVacation = func(time.Time) bool { return false }
	}

	statuses := make(map[string]models.HabitStatus)

	// The historical fold runs from the routine start through today,
	// even when To is earlier: completions recorded after To but no
	// later than today still compensate dates inside the window.
	foldEnd := in.Today

	var backlog []string // unresolved missed due dates, oldest first
	var aheadCredit float64

	for d := in.RoutineStart; !d.After(foldEnd); d = d.AddDate(0, 0, 1) {
		key := calendar.FormatDay(d)
		count := in.Completions[key]
		vac := onVacation(d)
		due := in.IsDue(d)

		inWindow := !d.Before(in.From) && !d.After(in.To)
		set := func(s models.HabitStatus) {
			if inWindow {
				statuses[key] = s
			}
		}
		// setEarlier rewrites an already-resolved date when a later
		// completion compensates it.
		setEarlier := func(day string, s models.HabitStatus) {
			if day >= calendar.FormatDay(in.From) && day <= calendar.FormatDay(in.To) {
				statuses[day] = s
			}
		}

		switch {
		case vac:
			if count > 0 {
				if in.BacklogEnabled && len(backlog) > 0 {
					setEarlier(backlog[0], models.StatusCompletedLater)
					backlog = backlog[1:]
					set(models.StatusSortedOutBacklogOnVacation)
				} else if count >= in.RequiredCompletions {
					set(models.StatusOverCompletedOnVacation)
				} else {
					set(models.StatusNotCompletedOnVacation)
				}
			} else {
				set(models.StatusNotCompletedOnVacation)
			}
			// Due dates on vacation carry no obligation and never
			// enter the backlog.

		case due:
			switch {
			case count == 0:
				if in.CompletingAheadEnabled && aheadCredit >= in.RequiredCompletions {
					aheadCredit -= in.RequiredCompletions
					set(models.StatusAlreadyCompleted)
				} else {
					set(models.StatusNotCompleted)
					if in.BacklogEnabled {
						backlog = append(backlog, key)
					}
				}
			case count > in.RequiredCompletions:
				set(models.StatusOverCompleted)
				if in.CompletingAheadEnabled {
					aheadCredit += count - in.RequiredCompletions
				}
			default:
				set(models.StatusCompleted)
			}

		default: // not due, not on vacation
			if count == 0 {
				set(models.StatusSkipped)
			} else if in.BacklogEnabled && len(backlog) > 0 {
				setEarlier(backlog[0], models.StatusCompletedLater)
				backlog = backlog[1:]
				set(models.StatusSortedOutBacklog)
			} else {
				set(models.StatusOverCompleted)
				if in.CompletingAheadEnabled {
					aheadCredit += count
				}
			}
		}
	}

	// Planning pass: dates after today up to To.
	planStart := in.Today.AddDate(0, 0, 1)
	if planStart.Before(in.From) {
		planStart = in.From
	}
	backlogOutstanding := in.BacklogEnabled && len(backlog) > 0
	for d := planStart; !d.After(in.To); d = d.AddDate(0, 0, 1) {
		key := calendar.FormatDay(d)
		statuses[key] = resolvePlanning(in.IsDue(d), in.Completions[key], onVacation(d), backlogOutstanding)
	}

	// Dates before the routine start are out of scope: a defined
	// NotDue answer, not an error.
	for d := in.From; d.Before(in.RoutineStart) && !d.After(in.To); d = d.AddDate(0, 0, 1) {
		statuses[calendar.FormatDay(d)] = models.StatusNotDue
	}

	return statuses, nil
}
