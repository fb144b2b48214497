package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

type HabitAddCmd struct {
	Name string `arg:"" help:"Habit name."`

	Schedule        string `short:"s" help:"Schedule type (every_day|weekly|monthly|periodic|custom_dates|annual)." default:"every_day"`
	Weekdays        string `short:"w" help:"Comma-separated weekdays for weekly schedules."`
	MonthDays       string `help:"Comma-separated days of the month for monthly schedules."`
	LastDay         bool   `help:"Monthly: also due on the last day of each month."`
	MonthlyWeekdays string `help:"Comma-separated ordinal weekdays for monthly schedules (e.g. first:mon,last:fri)."`
	Period          int    `help:"Period length in days for periodic schedules." default:"7"`
	PeriodDays      string `help:"Comma-separated 1-based due days within the period."`
	Dates           string `help:"Comma-separated YYYY-MM-DD dates for custom_dates schedules."`
	AnnualDates     string `help:"Comma-separated MM-DD dates for annual schedules."`

	Start    string  `help:"Routine start date (YYYY-MM-DD or 'today')." default:"today"`
	Sessions float64 `help:"Completions required per due day." default:"1"`

	NoBacklog         bool `help:"Disable compensating missed due days later."`
	NoCompletingAhead bool `help:"Disable pre-crediting future due days."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	sched, err := c.buildSchedule()
	if err != nil {
		return err
	}

	start, err := resolveDay(c.Start)
	if err != nil {
		return err
	}

	habit, err := ctx.Tracker.AddHabit(models.Habit{
		Name:                   c.Name,
		Schedule:               models.ScheduleSpec{Schedule: sched},
		StartDate:              calendar.FormatDay(start),
		SessionsPerDay:         c.Sessions,
		BacklogEnabled:         !c.NoBacklog,
		CompletingAheadEnabled: !c.NoCompletingAhead,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (ID: %s)\n", habit.Name, habit.ID)
	fmt.Printf("  Schedule: %s, starting %s\n", formatSchedule(sched), habit.StartDate)
	return nil
}

func (c *HabitAddCmd) buildSchedule() (models.Schedule, error) {
	switch c.Schedule {
	case "every_day":
		return models.EveryDay{}, nil

	case "weekly":
		if c.Weekdays == "" {
			return nil, fmt.Errorf("weekly schedules need --weekdays")
		}
		wds, err := parseWeekdays(c.Weekdays)
		if err != nil {
			return nil, err
		}
		return models.Weekly{DueDaysOfWeek: wds}, nil

	case "monthly":
		var m models.Monthly
		if c.MonthDays != "" {
			days, err := parseIntList(c.MonthDays)
			if err != nil {
				return nil, err
			}
			m.DueDayIndices = days
		}
		m.IncludeLastDayOfMonth = c.LastDay
		if c.MonthlyWeekdays != "" {
			rules, err := parseOrdinalWeekdays(c.MonthlyWeekdays)
			if err != nil {
				return nil, err
			}
			m.WeekDaysMonthRelated = rules
		}
		return m, nil

	case "periodic":
		if c.PeriodDays == "" {
			return nil, fmt.Errorf("periodic schedules need --period-days")
		}
		days, err := parseIntList(c.PeriodDays)
		if err != nil {
			return nil, err
		}
		return models.PeriodicCustom{DaysInPeriod: c.Period, DueDayIndices: days}, nil

	case "custom_dates":
		if c.Dates == "" {
			return nil, fmt.Errorf("custom_dates schedules need --dates")
		}
		var dates []time.Time
		for _, part := range strings.Split(c.Dates, ",") {
			d, err := calendar.ParseDay(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			dates = append(dates, d)
		}
		return models.CustomDate{DueDates: dates}, nil

	case "annual":
		if c.AnnualDates == "" {
			return nil, fmt.Errorf("annual schedules need --annual-dates")
		}
		var dates []calendar.AnnualDate
		for _, part := range strings.Split(c.AnnualDates, ",") {
			d, err := parseAnnualDate(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			dates = append(dates, d)
		}
		return models.Annual{DueDates: dates}, nil

	default:
		return nil, fmt.Errorf("invalid schedule type: %s", c.Schedule)
	}
}

// parseOrdinalWeekdays parses rules like "first:mon,last:fri".
func parseOrdinalWeekdays(s string) ([]calendar.WeekDayMonthRelated, error) {
	ordinals := map[string]calendar.Ordinal{
		"first":  calendar.First,
		"second": calendar.Second,
		"third":  calendar.Third,
		"fourth": calendar.Fourth,
		"fifth":  calendar.Fifth,
		"last":   calendar.Last,
	}

	var rules []calendar.WeekDayMonthRelated
	for _, part := range strings.Split(s, ",") {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid ordinal weekday %q, expected ordinal:weekday", part)
		}
		ord, ok := ordinals[strings.ToLower(fields[0])]
		if !ok {
			return nil, fmt.Errorf("invalid ordinal %q", fields[0])
		}
		wds, err := parseWeekdays(fields[1])
		if err != nil {
			return nil, err
		}
		rules = append(rules, calendar.WeekDayMonthRelated{
			DayOfWeek: wds[0],
			Ordinal:   ord,
		})
	}
	return rules, nil
}

// parseAnnualDate parses MM-DD.
func parseAnnualDate(s string) (calendar.AnnualDate, error) {
	fields := strings.SplitN(s, "-", 2)
	if len(fields) != 2 {
		return calendar.AnnualDate{}, fmt.Errorf("invalid annual date %q, expected MM-DD", s)
	}
	month, err := strconv.Atoi(fields[0])
	if err != nil {
		return calendar.AnnualDate{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return calendar.AnnualDate{}, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	return calendar.NewAnnualDate(time.Month(month), day)
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include soft-deleted habits."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(c.Archived, c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}

	fmt.Println("Habits:")
	for _, habit := range habits {
		state := "active"
		if habit.DeletedAt != nil {
			state = "deleted"
		} else if habit.ArchivedAt != nil {
			state = "archived"
		}

		fmt.Printf("  [%s] %s - %s (since %s)\n",
			state, habit.Name, formatSchedule(habit.Schedule.Schedule), habit.StartDate)
		fmt.Printf("      ID: %s\n", habit.ID)
		if habit.SessionsPerDay != 1 {
			fmt.Printf("      Sessions per day: %g\n", habit.SessionsPerDay)
		}
	}

	return nil
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitArchiveCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Archived habit: %s\n", habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Name)
	fmt.Println("(This is a soft delete. Use 'routinely habit restore' to undo)")
	return nil
}

type HabitRestoreCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (c *HabitRestoreCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.RestoreHabit(c.ID); err != nil {
		return err
	}

	fmt.Printf("Restored habit: %s\n", c.ID)
	return nil
}
