package cli

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/calendar"
)

type DoneCmd struct {
	Habit string  `arg:"" help:"Habit ID or name."`
	Date  string  `arg:"" help:"Day completed (YYYY-MM-DD or 'today')." default:"today"`
	Times float64 `short:"n" help:"Completion count for the day. Zero clears the record." default:"1"`
}

func (c *DoneCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	date, err := resolveDay(c.Date)
	if err != nil {
		return err
	}
	day := calendar.FormatDay(date)

	if err := ctx.Tracker.RecordCompletion(habit.ID, day, c.Times, today()); err != nil {
		return err
	}

	if c.Times == 0 {
		fmt.Printf("Cleared completion for %s on %s\n", habit.Name, day)
		return nil
	}
	fmt.Printf("Recorded %s: %g on %s\n", habit.Name, c.Times, day)

	// Show the updated streak as immediate feedback
	report, err := ctx.Tracker.Streaks(habit.ID, today())
	if err == nil && report.HasCurrent {
		fmt.Printf("Current streak: %d days\n", report.Current.DurationInDays())
	}
	return nil
}
