package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/routinely/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateToday:
		content = docStyle.Render(m.viewToday())
	case StateHabits:
		content = docStyle.Render(m.habitList.View())
	case StateMonth:
		content = docStyle.Render(m.monthView.View())
	case StateAddHabit:
		if m.form != nil {
			content = m.form.View()
		}
	case StateConfirmDelete:
		content = m.viewConfirm(dangerStyle.Render("Delete this habit?") + "\n(soft delete, restorable with 'r')")
	case StateConfirmArchive:
		content = m.viewConfirm("Archive this habit?")
	}

	var statusBar string
	if m.statusMsg != "" {
		statusBar = statusBarStyle.Render(m.statusMsg)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		statusBar,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Today", "Habits", "Month"} {
		state := m.tabState()
		if state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// tabState maps modal states back onto the tab they were opened from.
func (m Model) tabState() SessionState {
	if m.state < tabCount {
		return m.state
	}
	return m.previousState
}

func (m Model) viewToday() string {
	if len(m.todayRows) == 0 {
		return "\n  Nothing scheduled for today.\n  Add habits on the Habits tab."
	}

	var b strings.Builder
	for _, row := range m.todayRows {
		line := fmt.Sprintf("%-28s %s", row.Habit.Name, statusText(row.Status))
		if row.Habit.SessionsPerDay != 1 {
			line += fmt.Sprintf(" (%s/%s)",
				strconv.FormatFloat(row.TimesCompleted, 'f', -1, 64),
				strconv.FormatFloat(row.Habit.SessionsPerDay, 'f', -1, 64))
		}
		if row.InStreak {
			line += " ⚡"
		}
		b.WriteString(styleForToday(row.Status).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewConfirm(prompt string) string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			prompt,
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func styleForToday(s models.HabitStatus) lipgloss.Style {
	switch s {
	case models.StatusCompleted, models.StatusOverCompleted, models.StatusCompletedLater,
		models.StatusSortedOutBacklog, models.StatusAlreadyCompleted,
		models.StatusOverCompletedOnVacation, models.StatusSortedOutBacklogOnVacation:
		return todayDoneStyle
	case models.StatusPlanned, models.StatusBacklog, models.StatusNotCompleted:
		return todayPendingStyle
	default:
		return todayMutedStyle
	}
}

func statusText(s models.HabitStatus) string {
	switch s {
	case models.StatusCompleted:
		return "✓ done"
	case models.StatusOverCompleted, models.StatusOverCompletedOnVacation:
		return "✓✓ over-completed"
	case models.StatusCompletedLater:
		return "✓ completed later"
	case models.StatusSortedOutBacklog, models.StatusSortedOutBacklogOnVacation:
		return "✓ backlog cleared"
	case models.StatusAlreadyCompleted:
		return "✓ done ahead"
	case models.StatusNotCompleted:
		return "pending"
	case models.StatusSkipped:
		return "skipped"
	case models.StatusNotCompletedOnVacation, models.StatusOnVacation:
		return "~ vacation"
	case models.StatusPlanned:
		return "planned"
	case models.StatusBacklog:
		return "backlog"
	case models.StatusNotDue:
		return "not due"
	default:
		return string(s)
	}
}

// describeSchedule summarizes a schedule for list entries.
func describeSchedule(s models.Schedule) string {
	switch v := s.(type) {
	case models.EveryDay:
		return "every day"
	case models.Weekly:
		var days []string
		for _, wd := range v.DueDaysOfWeek {
			days = append(days, wd.String()[:3])
		}
		return "weekly on " + strings.Join(days, ",")
	case models.Monthly:
		return "monthly"
	case models.PeriodicCustom:
		return fmt.Sprintf("every %d days", v.DaysInPeriod)
	case models.CustomDate:
		return fmt.Sprintf("%d specific dates", len(v.DueDates))
	case models.Annual:
		return "annual"
	default:
		return "unknown"
	}
}
