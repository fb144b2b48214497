package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

type MonthCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Month string `arg:"" help:"Month to show (YYYY-MM)." default:""`
}

func (c *MonthCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	year, month, err := c.resolveMonth()
	if err != nil {
		return err
	}

	first := calendar.Date(year, month, 1)
	last := calendar.Date(year, month, calendar.LastDayOfMonth(year, month))

	days, err := ctx.Tracker.StatusRange(habit.ID, first, last, today())
	if err != nil {
		return err
	}
	byDay := make(map[string]models.HabitStatus, len(days))
	for _, d := range days {
		byDay[d.Day] = d.Status
	}

	fmt.Printf("%s - %s %d\n\n", habit.Name, month.String(), year)
	fmt.Println("  Su Mo Tu We Th Fr Sa")

	var row strings.Builder
	row.WriteString("  ")
	row.WriteString(strings.Repeat("   ", int(first.Weekday())))
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		row.WriteString(fmt.Sprintf(" %s%s", statusGlyph(byDay[calendar.FormatDay(d)]), dayCell(d.Day())))
		if d.Weekday() == time.Saturday {
			fmt.Println(row.String())
			row.Reset()
			row.WriteString("  ")
		}
	}
	if strings.TrimSpace(row.String()) != "" {
		fmt.Println(row.String())
	}

	fmt.Println()
	fmt.Println("  ✓ completed  ✗ missed  ~ vacation  • upcoming  · not due")
	return nil
}

func (c *MonthCmd) resolveMonth() (int, time.Month, error) {
	if c.Month == "" {
		now := today()
		return now.Year(), now.Month(), nil
	}
	parts := strings.SplitN(c.Month, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", c.Month)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in %q: %w", c.Month, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("invalid month in %q", c.Month)
	}
	return year, time.Month(m), nil
}

func dayCell(day int) string {
	return fmt.Sprintf("%2d", day)
}

// statusGlyph is the single-character marker used in calendar grids.
func statusGlyph(s models.HabitStatus) string {
	switch s {
	case models.StatusCompleted, models.StatusOverCompleted, models.StatusCompletedLater,
		models.StatusSortedOutBacklog, models.StatusAlreadyCompleted:
		return "✓"
	case models.StatusOverCompletedOnVacation, models.StatusSortedOutBacklogOnVacation:
		return "✓"
	case models.StatusNotCompleted:
		return "✗"
	case models.StatusNotCompletedOnVacation, models.StatusOnVacation:
		return "~"
	case models.StatusPlanned, models.StatusBacklog:
		return "•"
	default:
		return " "
	}
}
