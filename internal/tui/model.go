package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/tracker"
	"github.com/julianstephens/routinely/internal/tui/components/habitlist"
	"github.com/julianstephens/routinely/internal/tui/components/monthview"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateHabits
	StateMonth
	StateAddHabit
	StateConfirmDelete
	StateConfirmArchive
)

// tabCount is the number of cycling top-level tabs; modal states sit
// beyond it.
const tabCount = 3

type HabitFormModel struct {
	Name     string
	Schedule string
	Weekdays []string
	Sessions string
}

// TodayRow is one habit's resolved state for the current date.
type TodayRow struct {
	Habit          models.Habit
	Status         models.HabitStatus
	TimesCompleted float64
	InStreak       bool
}

type Model struct {
	store   storage.Provider
	tracker *tracker.Service

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	habitList habitlist.Model
	monthView monthview.Model
	todayRows []TodayRow

	form      *huh.Form
	habitForm *HabitFormModel

	habitToDeleteID  string
	habitToArchiveID string

	statusMsg string
	quitting  bool
	width     int
	height    int
}

func NewModel(store storage.Provider, svc *tracker.Service) Model {
	m := Model{
		store:     store,
		tracker:   svc,
		state:     StateToday,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		monthView: monthview.New(0, 0),
	}
	m.habitList = habitlist.New(m.buildHabitItems(), 0, 0)
	m.refreshToday()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateHabits:
		keys = append(keys, m.keys.Add, m.keys.Complete, m.keys.Delete)
	case StateMonth:
		keys = append(keys, m.keys.Left, m.keys.Right)
	case StateToday:
		keys = append(keys, m.keys.Complete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Enter}

	var actions []key.Binding
	switch m.state {
	case StateHabits:
		actions = []key.Binding{m.keys.Add, m.keys.Complete, m.keys.Archive, m.keys.Delete, m.keys.Restore}
	case StateToday:
		actions = []key.Binding{m.keys.Complete}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func today() time.Time {
	now := time.Now()
	return calendar.Date(now.Year(), now.Month(), now.Day())
}

// buildHabitItems assembles list entries with schedule summaries and
// current streak lengths.
func (m *Model) buildHabitItems() []habitlist.Item {
	habits, err := m.store.GetAllHabits(false, true)
	if err != nil {
		return nil
	}

	items := make([]habitlist.Item, 0, len(habits))
	for _, h := range habits {
		item := habitlist.Item{
			Habit:    h,
			Schedule: describeSchedule(h.Schedule.Schedule),
		}
		if h.DeletedAt == nil {
			if report, err := m.tracker.Streaks(h.ID, today()); err == nil && report.HasCurrent {
				item.Streak = report.Current.DurationInDays()
			}
		}
		items = append(items, item)
	}
	return items
}

// refreshToday recomputes the Today tab's rows.
func (m *Model) refreshToday() {
	habits, err := m.store.GetAllHabits(false, false)
	if err != nil {
		m.todayRows = nil
		return
	}

	now := today()
	rows := make([]TodayRow, 0, len(habits))
	for _, h := range habits {
		days, err := m.tracker.StatusRange(h.ID, now, now, now)
		if err != nil || len(days) == 0 {
			continue
		}
		rows = append(rows, TodayRow{
			Habit:          h,
			Status:         days[0].Status,
			TimesCompleted: days[0].TimesCompleted,
			InStreak:       days[0].InStreak,
		})
	}
	m.todayRows = rows
}

// refreshMonth reloads the month view for its current habit and month.
func (m *Model) refreshMonth(habitID string) {
	habit, err := m.store.GetHabit(habitID)
	if err != nil {
		return
	}

	first := calendar.Date(m.monthView.Year(), m.monthView.Month(), 1)
	last := calendar.Date(m.monthView.Year(), m.monthView.Month(),
		calendar.LastDayOfMonth(m.monthView.Year(), m.monthView.Month()))

	days, err := m.tracker.StatusRange(habit.ID, first, last, today())
	if err != nil {
		return
	}

	byDay := make(map[string]monthview.DayStatus, len(days))
	for _, d := range days {
		byDay[d.Day] = monthview.DayStatus{Status: d.Status, InStreak: d.InStreak}
	}
	m.monthView.SetData(habit, byDay)
}

// newHabitForm builds the add-habit form.
func (m *Model) newHabitForm() {
	m.habitForm = &HabitFormModel{Schedule: "every_day", Sessions: "1"}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.habitForm.Name),
			huh.NewSelect[string]().
				Title("Schedule").
				Options(
					huh.NewOption("Every day", "every_day"),
					huh.NewOption("Weekly", "weekly"),
				).
				Value(&m.habitForm.Schedule),
			huh.NewMultiSelect[string]().
				Title("Weekdays (weekly only)").
				Options(
					huh.NewOption("Monday", "mon"),
					huh.NewOption("Tuesday", "tue"),
					huh.NewOption("Wednesday", "wed"),
					huh.NewOption("Thursday", "thu"),
					huh.NewOption("Friday", "fri"),
					huh.NewOption("Saturday", "sat"),
					huh.NewOption("Sunday", "sun"),
				).
				Value(&m.habitForm.Weekdays),
			huh.NewInput().
				Title("Sessions per day").
				Value(&m.habitForm.Sessions),
		),
	)
}

// submitHabitForm turns the completed form into a stored habit.
func (m *Model) submitHabitForm() error {
	sessions, err := strconv.ParseFloat(m.habitForm.Sessions, 64)
	if err != nil {
		sessions = 1
	}

	var sched models.Schedule = models.EveryDay{}
	if m.habitForm.Schedule == "weekly" {
		weekdayMap := map[string]time.Weekday{
			"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
			"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
		}
		var wds []time.Weekday
		for _, w := range m.habitForm.Weekdays {
			wds = append(wds, weekdayMap[w])
		}
		sched = models.Weekly{DueDaysOfWeek: wds}
	}

	_, err = m.tracker.AddHabit(models.Habit{
		Name:                   m.habitForm.Name,
		Schedule:               models.ScheduleSpec{Schedule: sched},
		StartDate:              calendar.FormatDay(today()),
		SessionsPerDay:         sessions,
		BacklogEnabled:         true,
		CompletingAheadEnabled: true,
	})
	return err
}
