package monthview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	weekdayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	missedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	vacationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	plannedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	streakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

// DayStatus is one rendered cell of the calendar.
type DayStatus struct {
	Status   models.HabitStatus
	InStreak bool
}

type Model struct {
	viewport viewport.Model
	habit    *models.Habit
	year     int
	month    time.Month
	days     map[string]DayStatus
	width    int
	height   int
}

func New(width, height int) Model {
	now := time.Now()
	return Model{
		viewport: viewport.New(width, height),
		year:     now.Year(),
		month:    now.Month(),
		days:     make(map[string]DayStatus),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.habit == nil {
		return "\n  No habit selected.\n  Pick one on the Habits tab and press 'm'."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// Year and Month report the currently displayed month.
func (m Model) Year() int         { return m.year }
func (m Model) Month() time.Month { return m.month }

// SetMonth moves the view to a specific month, keeping the habit.
func (m *Model) SetMonth(year int, month time.Month) {
	m.year = year
	m.month = month
}

// ShiftMonth moves the view forward or backward by delta months.
func (m *Model) ShiftMonth(delta int) {
	d := calendar.Date(m.year, m.month, 1).AddDate(0, delta, 0)
	m.year = d.Year()
	m.month = d.Month()
}

// SetData replaces the habit and its resolved statuses for the
// displayed month.
func (m *Model) SetData(habit models.Habit, days map[string]DayStatus) {
	m.habit = &habit
	m.days = days
	m.Render()
}

func (m *Model) Render() {
	if m.habit == nil {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s - %s %d", m.habit.Name, m.month.String(), m.year)))
	b.WriteString("\n\n")
	b.WriteString(weekdayStyle.Render(" Su  Mo  Tu  We  Th  Fr  Sa"))
	b.WriteString("\n")

	first := calendar.Date(m.year, m.month, 1)
	last := calendar.Date(m.year, m.month, calendar.LastDayOfMonth(m.year, m.month))

	var row strings.Builder
	row.WriteString(strings.Repeat("    ", int(first.Weekday())))
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		row.WriteString(m.renderCell(d))
		if d.Weekday() == time.Saturday {
			b.WriteString(row.String())
			b.WriteString("\n")
			row.Reset()
		}
	}
	if row.Len() > 0 {
		b.WriteString(row.String())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("h/l: prev/next month"))
	m.viewport.SetContent(b.String())
}

func (m *Model) renderCell(d time.Time) string {
	cell := fmt.Sprintf("%3d ", d.Day())
	ds, ok := m.days[calendar.FormatDay(d)]
	if !ok {
		return mutedStyle.Render(cell)
	}

	style := styleFor(ds.Status)
	if ds.InStreak {
		style = streakStyle
	}
	return style.Render(cell)
}

func styleFor(s models.HabitStatus) lipgloss.Style {
	switch s {
	case models.StatusCompleted, models.StatusOverCompleted, models.StatusCompletedLater,
		models.StatusSortedOutBacklog, models.StatusAlreadyCompleted,
		models.StatusOverCompletedOnVacation, models.StatusSortedOutBacklogOnVacation:
		return completedStyle
	case models.StatusNotCompleted:
		return missedStyle
	case models.StatusNotCompletedOnVacation, models.StatusOnVacation:
		return vacationStyle
	case models.StatusPlanned, models.StatusBacklog:
		return plannedStyle
	default:
		return mutedStyle
	}
}
