// Package today renders the checklist of active habits for the current day.
package today

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/models"
)

// ToggleMsg asks for the completion of a habit to be flipped for today.
type ToggleMsg struct {
	ID   models.ID
	Name string
}

type Item struct {
	Entry models.TodayEntry
}

func (i Item) Title() string {
	mark := "○"
	if i.Entry.Completed {
		mark = "✓"
	}
	return fmt.Sprintf("%s %s %s", mark, i.Entry.Habit.Emoji, i.Entry.Habit.Name)
}

func (i Item) Description() string {
	h := i.Entry.Habit
	state := "not completed today"
	if i.Entry.Completed {
		state = "completed today"
	}
	return fmt.Sprintf("%s · streak %d (best %d)", state, h.CurrentStreak, h.LongestStreak)
}

func (i Item) FilterValue() string { return i.Entry.Habit.Name }

type KeyMap struct {
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("enter", " ", "x"),
			key.WithHelp("space/x", "toggle"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []models.TodayEntry, width, height int) Model {
	l := list.New(items(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.KeyMap.Quit.SetEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle}
	}
	return Model{list: l, keys: keys}
}

func items(entries []models.TodayEntry) []list.Item {
	out := make([]list.Item, len(entries))
	for i, e := range entries {
		out[i] = Item{Entry: e}
	}
	return out
}

// SetEntries replaces the checklist, keeping the cursor where it was.
func (m *Model) SetEntries(entries []models.TodayEntry) {
	idx := m.list.Index()
	m.list.SetItems(items(entries))
	if idx < len(entries) {
		m.list.Select(idx)
	}
}

// Completed returns how many entries are done and how many there are.
func (m Model) Completed() (done, total int) {
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok && i.Entry.Completed {
			done++
		}
	}
	return done, len(m.list.Items())
}

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Keys() KeyMap { return m.keys }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if key.Matches(msg, m.keys.Toggle) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg {
					return ToggleMsg{ID: i.Entry.Habit.ID, Name: i.Entry.Habit.Name}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No active habits for today.\n  Add one on the Habits tab."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
