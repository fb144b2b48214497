package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habitList.SetSize(msg.Width-4, msg.Height-6)
		m.monthView.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case habitlist.AddHabitMsg:
		m.previousState = m.state
		m.state = StateAddHabit
		m.newHabitForm()
		return m, m.form.Init()

	case habitlist.CompleteHabitMsg:
		m.completeToday(msg.ID)
		return m, nil

	case habitlist.ArchiveHabitMsg:
		m.previousState = m.state
		m.state = StateConfirmArchive
		m.habitToArchiveID = msg.ID
		return m, nil

	case habitlist.DeleteHabitMsg:
		m.previousState = m.state
		m.state = StateConfirmDelete
		m.habitToDeleteID = msg.ID
		return m, nil

	case habitlist.RestoreHabitMsg:
		if err := m.store.RestoreHabit(msg.ID); err != nil {
			m.statusMsg = fmt.Sprintf("Restore failed: %v", err)
		} else {
			m.statusMsg = "Habit restored"
			m.refreshAll()
		}
		return m, nil

	case habitlist.ShowMonthMsg:
		m.state = StateMonth
		m.refreshMonth(msg.ID)
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case StateConfirmArchive:
		return m.updateConfirmArchive(msg)
	}

	filtering := m.state == StateHabits && m.habitList.Filtering()
	if msg, ok := msg.(tea.KeyMsg); ok && !filtering {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			m.statusMsg = ""
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			m.statusMsg = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateMonth:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Left):
				m.monthView.ShiftMonth(-1)
				if habit, ok := m.habitList.Selected(); ok {
					m.refreshMonth(habit.ID)
				}
				return m, nil
			case key.Matches(msg, m.keys.Right):
				m.monthView.ShiftMonth(1)
				if habit, ok := m.habitList.Selected(); ok {
					m.refreshMonth(habit.ID)
				}
				return m, nil
			}
		}
		m.monthView, cmd = m.monthView.Update(msg)
	case StateToday:
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Complete) {
			// On the Today tab 'c' completes the first pending habit
			for _, row := range m.todayRows {
				if row.TimesCompleted == 0 {
					m.completeToday(row.Habit.ID)
					break
				}
			}
			return m, nil
		}
	}

	return m, cmd
}

func (m *Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.state = m.previousState
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if err := m.submitHabitForm(); err != nil {
			m.statusMsg = fmt.Sprintf("Add failed: %v", err)
		} else {
			m.statusMsg = fmt.Sprintf("Added habit: %s", m.habitForm.Name)
			m.refreshAll()
		}
		m.state = m.previousState
		m.form = nil
	}

	return m, cmd
}

func (m *Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			if err := m.store.DeleteHabit(m.habitToDeleteID); err != nil {
				m.statusMsg = fmt.Sprintf("Delete failed: %v", err)
			} else {
				m.statusMsg = "Habit deleted (restore with 'r')"
				m.refreshAll()
			}
			m.state = m.previousState
			m.habitToDeleteID = ""
		case "n", "N", "esc":
			m.state = m.previousState
			m.habitToDeleteID = ""
		}
	}
	return m, nil
}

func (m *Model) updateConfirmArchive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			if err := m.store.ArchiveHabit(m.habitToArchiveID); err != nil {
				m.statusMsg = fmt.Sprintf("Archive failed: %v", err)
			} else {
				m.statusMsg = "Habit archived"
				m.refreshAll()
			}
			m.state = m.previousState
			m.habitToArchiveID = ""
		case "n", "N", "esc":
			m.state = m.previousState
			m.habitToArchiveID = ""
		}
	}
	return m, nil
}

// completeToday records one completion for today, adding to any count
// already recorded.
func (m *Model) completeToday(habitID string) {
	day := calendar.FormatDay(today())

	count := 1.0
	if records, err := m.store.GetCompletions(habitID); err == nil {
		for _, rec := range records {
			if rec.Day == day {
				count += rec.TimesCompleted
			}
		}
	}

	if err := m.tracker.RecordCompletion(habitID, day, count, today()); err != nil {
		m.statusMsg = fmt.Sprintf("Complete failed: %v", err)
		return
	}
	m.statusMsg = "Completion recorded"
	m.refreshAll()
}

func (m *Model) refreshAll() {
	m.habitList.SetItems(m.buildHabitItems())
	m.refreshToday()
	if habit, ok := m.habitList.Selected(); ok {
		m.refreshMonth(habit.ID)
	}
}
