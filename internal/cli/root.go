package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/tracker"
)

type Context struct {
	Store   storage.Provider
	Tracker *tracker.Service
}

// PerformAutomaticBackup snapshots the storage file, logging failures
// to stderr rather than aborting the command that triggered it.
func (ctx *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: automatic backup failed: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Automatic backup created: %s\n", filepath.Base(backupPath))
}

// today returns the current date truncated to UTC midnight.
func today() time.Time {
	now := time.Now()
	return calendar.Date(now.Year(), now.Month(), now.Day())
}

// resolveDay parses a YYYY-MM-DD argument, treating "today" as the
// current date.
func resolveDay(s string) (time.Time, error) {
	if s == "" || s == "today" {
		return today(), nil
	}
	d, err := calendar.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return d, nil
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	var weekdays []time.Weekday

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
		} else {
			// Try parsing as number (0=Sunday, 6=Saturday)
			num, err := strconv.Atoi(part)
			if err == nil && num >= 0 && num <= 6 {
				weekdays = append(weekdays, time.Weekday(num))
			} else {
				return nil, fmt.Errorf("invalid weekday: %s", part)
			}
		}
	}

	return weekdays, nil
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func formatSchedule(s models.Schedule) string {
	switch v := s.(type) {
	case models.EveryDay:
		return "every day"
	case models.Weekly:
		var days []string
		for _, wd := range v.DueDaysOfWeek {
			days = append(days, wd.String()[:3])
		}
		return fmt.Sprintf("weekly on %s", strings.Join(days, ","))
	case models.Monthly:
		var parts []string
		for _, idx := range v.DueDayIndices {
			parts = append(parts, strconv.Itoa(idx))
		}
		if v.IncludeLastDayOfMonth {
			parts = append(parts, "last")
		}
		for _, rule := range v.WeekDaysMonthRelated {
			parts = append(parts, fmt.Sprintf("%s %s",
				strings.ToLower(rule.Ordinal.String()), rule.DayOfWeek.String()[:3]))
		}
		return fmt.Sprintf("monthly on %s", strings.Join(parts, ","))
	case models.PeriodicCustom:
		var parts []string
		for _, idx := range v.DueDayIndices {
			parts = append(parts, strconv.Itoa(idx))
		}
		return fmt.Sprintf("every %d days on day %s", v.DaysInPeriod, strings.Join(parts, ","))
	case models.CustomDate:
		return fmt.Sprintf("%d specific dates", len(v.DueDates))
	case models.Annual:
		var parts []string
		for _, d := range v.DueDates {
			parts = append(parts, fmt.Sprintf("%s %d", d.Month.String()[:3], d.DayOfMonth))
		}
		return fmt.Sprintf("annually on %s", strings.Join(parts, ","))
	default:
		return "unknown"
	}
}

// statusLabel renders a resolved status for terminal listings.
func statusLabel(s models.HabitStatus) string {
	switch s {
	case models.StatusCompleted:
		return "✓ completed"
	case models.StatusOverCompleted:
		return "✓✓ over-completed"
	case models.StatusOverCompletedOnVacation:
		return "✓✓ over-completed (vacation)"
	case models.StatusCompletedLater:
		return "✓ completed later"
	case models.StatusSortedOutBacklog:
		return "✓ sorted out backlog"
	case models.StatusSortedOutBacklogOnVacation:
		return "✓ sorted out backlog (vacation)"
	case models.StatusAlreadyCompleted:
		return "✓ already completed"
	case models.StatusNotCompleted:
		return "✗ not completed"
	case models.StatusSkipped:
		return "- skipped"
	case models.StatusNotCompletedOnVacation:
		return "~ on vacation"
	case models.StatusOnVacation:
		return "~ vacation"
	case models.StatusPlanned:
		return "• planned"
	case models.StatusBacklog:
		return "• backlog"
	case models.StatusNotDue:
		return "· not due"
	default:
		return string(s)
	}
}

// findHabit resolves a habit by ID or by exact name.
func findHabit(store storage.Provider, ref string) (models.Habit, error) {
	if habit, err := store.GetHabit(ref); err == nil {
		return habit, nil
	}

	habits, err := store.GetAllHabits(true, false)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit not found: %s", ref)
}
