package tracker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/status"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/streak"
)

// Service ties schedule evaluation, status resolution and streak
// detection to a storage provider. It is the layer the CLI and TUI talk
// to; neither touches the resolver directly.
type Service struct {
	store  storage.Provider
	engine *schedule.Engine
}

func NewService(store storage.Provider) *Service {
	return &Service{
		store:  store,
		engine: schedule.New(),
	}
}

// DayData is one resolved calendar date of a habit's history.
type DayData struct {
	Day            string
	Status         models.HabitStatus
	TimesCompleted float64
	InStreak       bool
}

// StreakReport summarizes a habit's streaks as of today.
type StreakReport struct {
	All     []streak.Streak
	Current streak.Streak
	// HasCurrent is false when the most recent streak is already broken.
	HasCurrent bool
	Longest    streak.Streak
	HasLongest bool
}

// habitContext gathers everything the resolver needs for one habit.
type habitContext struct {
	habit        models.Habit
	routineStart time.Time
	completions  map[string]float64
	vacations    []models.Vacation
}

func (s *Service) loadContext(habitID string) (habitContext, error) {
	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		return habitContext{}, err
	}

	routineStart, err := calendar.ParseDay(habit.StartDate)
	if err != nil {
		return habitContext{}, fmt.Errorf("habit %s has a malformed start date: %w", habit.ID, err)
	}

	records, err := s.store.GetCompletions(habitID)
	if err != nil {
		return habitContext{}, err
	}
	completions := make(map[string]float64, len(records))
	for _, rec := range records {
		completions[rec.Day] = rec.TimesCompleted
	}

	vacations, err := s.store.GetVacations(habitID)
	if err != nil {
		return habitContext{}, err
	}

	return habitContext{
		habit:        habit,
		routineStart: routineStart,
		completions:  completions,
		vacations:    vacations,
	}, nil
}

func (s *Service) rangeInput(hc habitContext, from, to, today time.Time) status.RangeInput {
	sched := hc.habit.Schedule.Schedule
	return status.RangeInput{
		RoutineStart:           hc.routineStart,
		From:                   from,
		To:                     to,
		Today:                  today,
		RequiredCompletions:    hc.habit.SessionsPerDay,
		BacklogEnabled:         hc.habit.BacklogEnabled,
		CompletingAheadEnabled: hc.habit.CompletingAheadEnabled,
		IsDue: func(d time.Time) bool {
			return s.engine.IsDue(d, hc.routineStart, sched)
		},
		Completions: hc.completions,
		OnVacation: func(d time.Time) bool {
			day := calendar.FormatDay(d)
			for _, v := range hc.vacations {
				if v.Contains(day) {
					return true
				}
			}
			return false
		},
	}
}

// StatusRange resolves every date in [from, to] for a habit and marks
// which resolved dates sit inside a streak. Results are ordered by day.
func (s *Service) StatusRange(habitID string, from, to, today time.Time) ([]DayData, error) {
	hc, err := s.loadContext(habitID)
	if err != nil {
		return nil, err
	}

	statuses, err := status.ResolveRange(s.rangeInput(hc, from, to, today))
	if err != nil {
		return nil, err
	}

	streaks, err := s.detectStreaks(hc, today)
	if err != nil {
		return nil, err
	}

	var days []DayData
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := calendar.FormatDay(d)
		st, ok := statuses[key]
		if !ok {
			continue
		}
		inStreak := false
		for _, run := range streaks {
			if run.Contains(d) {
				inStreak = true
				break
			}
		}
		days = append(days, DayData{
			Day:            key,
			Status:         st,
			TimesCompleted: hc.completions[key],
			InStreak:       inStreak,
		})
	}
	return days, nil
}

// detectStreaks resolves the habit's full history through today and
// partitions it into streaks.
func (s *Service) detectStreaks(hc habitContext, today time.Time) ([]streak.Streak, error) {
	if today.Before(hc.routineStart) {
		return nil, nil
	}

	statuses, err := status.ResolveRange(s.rangeInput(hc, hc.routineStart, today, today))
	if err != nil {
		return nil, err
	}

	var entries []streak.StatusEntry
	for d := hc.routineStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		entries = append(entries, streak.StatusEntry{
			Date:   d,
			Status: statuses[calendar.FormatDay(d)],
		})
	}
	return streak.DetectAll(entries), nil
}

// Streaks computes the full streak report for a habit as of today.
func (s *Service) Streaks(habitID string, today time.Time) (StreakReport, error) {
	hc, err := s.loadContext(habitID)
	if err != nil {
		return StreakReport{}, err
	}

	streaks, err := s.detectStreaks(hc, today)
	if err != nil {
		return StreakReport{}, err
	}

	report := StreakReport{All: streaks}
	report.Current, report.HasCurrent = streak.Current(streaks, today)
	report.Longest, report.HasLongest = streak.Longest(streaks)
	return report, nil
}

// RecordCompletion stores a completion count for a day. A count of zero
// clears any prior record. Future days cannot be completed.
func (s *Service) RecordCompletion(habitID, day string, times float64, today time.Time) error {
	date, err := calendar.ParseDay(day)
	if err != nil {
		return fmt.Errorf("invalid day: %w", err)
	}
	if date.After(today) {
		return fmt.Errorf("cannot record a completion for future day %s", day)
	}
	if times < 0 {
		return fmt.Errorf("completion count must not be negative, got %v", times)
	}

	if times == 0 {
		err := s.store.DeleteCompletion(habitID, day)
		if err != nil {
			// Clearing a day that was never recorded is a no-op.
			if _, herr := s.store.GetHabit(habitID); herr != nil {
				return herr
			}
			return nil
		}
		return nil
	}

	now := time.Now().UTC()
	return s.store.UpsertCompletion(models.CompletionRecord{
		HabitID:        habitID,
		Day:            day,
		TimesCompleted: times,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// AddVacation records a vacation interval for a habit and returns its
// generated ID. An empty end day means open-ended.
func (s *Service) AddVacation(habitID, startDay, endDay string) (models.Vacation, error) {
	if _, err := calendar.ParseDay(startDay); err != nil {
		return models.Vacation{}, fmt.Errorf("invalid start day: %w", err)
	}
	if endDay != "" {
		if _, err := calendar.ParseDay(endDay); err != nil {
			return models.Vacation{}, fmt.Errorf("invalid end day: %w", err)
		}
		if endDay < startDay {
			return models.Vacation{}, fmt.Errorf("vacation end %s precedes start %s", endDay, startDay)
		}
	}

	vacation := models.Vacation{
		ID:       uuid.New().String(),
		HabitID:  habitID,
		StartDay: startDay,
		EndDay:   endDay,
	}
	if err := s.store.AddVacation(vacation); err != nil {
		return models.Vacation{}, err
	}
	return vacation, nil
}

// AddHabit validates and stores a new habit, returning it with a
// generated ID.
func (s *Service) AddHabit(habit models.Habit) (models.Habit, error) {
	if habit.Name == "" {
		return models.Habit{}, fmt.Errorf("habit name is required")
	}
	if habit.Schedule.Schedule == nil {
		return models.Habit{}, fmt.Errorf("habit schedule is required")
	}
	if err := habit.Schedule.Schedule.Validate(); err != nil {
		return models.Habit{}, err
	}
	if _, err := calendar.ParseDay(habit.StartDate); err != nil {
		return models.Habit{}, fmt.Errorf("invalid start date: %w", err)
	}
	if habit.SessionsPerDay <= 0 {
		return models.Habit{}, fmt.Errorf("sessions per day must be positive, got %v", habit.SessionsPerDay)
	}

	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now().UTC()
	}

	if err := s.store.AddHabit(habit); err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}
