package cli

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/calendar"
)

type StreaksCmd struct {
	Habit string `arg:"" optional:"" help:"Habit ID or name. Omit to show all habits."`
	All   bool   `help:"List every streak, not just current and longest."`
}

func (c *StreaksCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if c.Habit != "" {
		habit, err := findHabit(ctx.Store, c.Habit)
		if err != nil {
			return err
		}
		return c.printStreaks(ctx, habit.ID, habit.Name)
	}

	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}
	for _, habit := range habits {
		if err := c.printStreaks(ctx, habit.ID, habit.Name); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

func (c *StreaksCmd) printStreaks(ctx *Context, habitID, name string) error {
	report, err := ctx.Tracker.Streaks(habitID, today())
	if err != nil {
		return err
	}

	fmt.Printf("%s:\n", name)
	if report.HasCurrent {
		fmt.Printf("  Current streak: %d days (since %s)\n",
			report.Current.DurationInDays(), calendar.FormatDay(report.Current.StartDate))
	} else {
		fmt.Println("  Current streak: none")
	}
	if report.HasLongest {
		fmt.Printf("  Longest streak: %d days (%s to %s)\n",
			report.Longest.DurationInDays(),
			calendar.FormatDay(report.Longest.StartDate),
			calendar.FormatDay(report.Longest.EndDate))
	}

	if c.All && len(report.All) > 0 {
		fmt.Printf("  All streaks (%d):\n", len(report.All))
		for _, s := range report.All {
			fmt.Printf("    %s to %s (%d days)\n",
				calendar.FormatDay(s.StartDate), calendar.FormatDay(s.EndDate), s.DurationInDays())
		}
	}
	return nil
}
