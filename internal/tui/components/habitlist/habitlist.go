package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/models"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	ID string
}

type ArchiveHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type RestoreHabitMsg struct {
	ID string
}

type ShowMonthMsg struct {
	ID string
}

type Item struct {
	Habit    models.Habit
	Schedule string
	Streak   int
}

func (i Item) Title() string {
	if i.Habit.DeletedAt != nil {
		return "👻 " + i.Habit.Name + " (deleted)"
	}
	if i.Habit.ArchivedAt != nil {
		return i.Habit.Name + " (archived)"
	}
	return i.Habit.Name
}

func (i Item) Description() string {
	desc := i.Schedule
	if i.Streak > 0 {
		desc += fmt.Sprintf(" | ⚡ %d day streak", i.Streak)
	}
	if i.Habit.DeletedAt != nil {
		desc += " | can restore with 'r'"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add      key.Binding
	Complete key.Binding
	Archive  key.Binding
	Delete   key.Binding
	Restore  key.Binding
	Month    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete today"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		Month: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "month view"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []Item, width, height int) Model {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}

	l := list.New(listItems, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // Help is rendered globally by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.Month}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.Archive, keys.Delete, keys.Restore, keys.Month}
	}

	return Model{list: l, keys: keys}
}

func (m *Model) SetItems(items []Item) {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}
	m.list.SetItems(listItems)
}

// Filtering reports whether the list's filter input is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Selected returns the habit under the cursor, if any.
func (m Model) Selected() (models.Habit, bool) {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Habit, true
	}
	return models.Habit{}, false
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Habit.DeletedAt == nil {
				return m, func() tea.Msg { return CompleteHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Habit.DeletedAt == nil {
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Habit.DeletedAt == nil {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Restore):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Habit.DeletedAt != nil {
				return m, func() tea.Msg { return RestoreHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Month):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ShowMonthMsg{ID: i.Habit.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
