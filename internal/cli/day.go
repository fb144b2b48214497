package cli

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/calendar"
)

type DayCmd struct {
	Date string `arg:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *DayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := resolveDay(c.Date)
	if err != nil {
		return err
	}
	day := calendar.FormatDay(date)

	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}

	fmt.Printf("Habits for %s:\n\n", day)
	for _, habit := range habits {
		days, err := ctx.Tracker.StatusRange(habit.ID, date, date, today())
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", habit.Name, err)
		}
		if len(days) == 0 {
			continue
		}

		d := days[0]
		line := fmt.Sprintf("  %-30s %s", habit.Name, statusLabel(d.Status))
		if d.TimesCompleted > 0 && habit.SessionsPerDay != 1 {
			line += fmt.Sprintf(" (%g/%g)", d.TimesCompleted, habit.SessionsPerDay)
		}
		if d.InStreak {
			line += "  ⚡"
		}
		fmt.Println(line)
	}

	return nil
}
