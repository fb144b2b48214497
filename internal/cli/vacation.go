package cli

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/calendar"
)

type VacationAddCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Start string `arg:"" help:"First vacation day (YYYY-MM-DD or 'today')."`
	End   string `arg:"" optional:"" help:"Last vacation day (YYYY-MM-DD). Omit for open-ended."`
}

func (c *VacationAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	start, err := resolveDay(c.Start)
	if err != nil {
		return err
	}
	endDay := ""
	if c.End != "" {
		end, err := resolveDay(c.End)
		if err != nil {
			return err
		}
		endDay = calendar.FormatDay(end)
	}

	vacation, err := ctx.Tracker.AddVacation(habit.ID, calendar.FormatDay(start), endDay)
	if err != nil {
		return err
	}

	if vacation.EndDay == "" {
		fmt.Printf("Added open-ended vacation for %s from %s (ID: %s)\n",
			habit.Name, vacation.StartDay, vacation.ID)
	} else {
		fmt.Printf("Added vacation for %s: %s to %s (ID: %s)\n",
			habit.Name, vacation.StartDay, vacation.EndDay, vacation.ID)
	}
	return nil
}

type VacationListCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *VacationListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	vacations, err := ctx.Store.GetVacations(habit.ID)
	if err != nil {
		return err
	}
	if len(vacations) == 0 {
		fmt.Printf("No vacations for %s\n", habit.Name)
		return nil
	}

	fmt.Printf("Vacations for %s:\n", habit.Name)
	for _, v := range vacations {
		if v.EndDay == "" {
			fmt.Printf("  %s onward (open-ended)  ID: %s\n", v.StartDay, v.ID)
		} else {
			fmt.Printf("  %s to %s  ID: %s\n", v.StartDay, v.EndDay, v.ID)
		}
	}
	return nil
}

type VacationDeleteCmd struct {
	ID string `arg:"" help:"Vacation ID."`
}

func (c *VacationDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.DeleteVacation(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted vacation: %s\n", c.ID)
	return nil
}
