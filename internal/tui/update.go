package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/store"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
	"github.com/julianstephens/habitual/internal/tui/components/today"
	"github.com/julianstephens/habitual/internal/validation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// tabs, banner, status bar and help
		listHeight := msg.Height - 6
		h, v := docStyle.GetFrameSize()
		m.todayModel.SetSize(msg.Width-h, listHeight-v)
		m.habitsModel.SetSize(msg.Width-h, listHeight-v)
		return m, nil

	case eventsMsg:
		return m.handleEvents(msg)

	case opDoneMsg:
		return m.handleOpDone(msg)

	case signInDoneMsg:
		if msg.err != nil {
			// stay on the form so the user can retry
			return m, m.openSignIn(msg.email)
		}
		m.sync()
		m.state = m.previousState
		m.form = nil
		return m, m.loadInactive()

	case inactiveMsg:
		if msg.err == nil {
			m.inactive = msg.habits
			m.habitsModel.SetHabits(m.allHabits())
		}
		return m, nil

	case statsMsg:
		m.statsLoading = false
		m.statsErr = ""
		if msg.err != nil {
			m.statsErr = api.Message(msg.err, "Failed to load stats")
			return m, nil
		}
		stats := msg.stats
		m.stats, m.calendar = &stats, msg.calendar
		return m, nil
	}

	switch m.state {
	case constants.StateSignIn:
		return m.updateSignIn(msg)
	case constants.StateAddHabit, constants.StateEditHabit:
		return m.updateHabitForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case today.ToggleMsg:
		return m, m.toggle(msg.ID, msg.Name)
	case habits.AddHabitMsg:
		return m, m.openHabitForm(nil)
	case habits.EditHabitMsg:
		return m, m.openHabitForm(&msg.Habit)
	case habits.DeleteHabitMsg:
		h := msg.Habit
		m.pendingDelete = &h
		m.state = constants.StateConfirmDelete
		return m, nil
	case habits.SetActiveMsg:
		return m, m.setActive(msg.Habit, msg.Active)
	case tea.KeyMsg:
		if handled, cmd := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case constants.StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return true, tea.Quit
	}
	if m.filtering() {
		return false, nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		return true, m.switchTab(1)
	case key.Matches(msg, m.keys.ShiftTab):
		return true, m.switchTab(-1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.Refresh):
		m.setStatus("Refreshing...", false)
		cmds := []tea.Cmd{m.refresh()}
		if m.state == constants.StateStats {
			cmds = append(cmds, m.startStats())
		}
		return true, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.Account):
		if m.signedIn {
			return true, m.signOut()
		}
		return true, m.openSignIn("")
	case m.state == constants.StateStats && key.Matches(msg, m.keys.PrevMonth):
		m.month = m.month.AddDate(0, -1, 0)
		return true, m.startStats()
	case m.state == constants.StateStats && key.Matches(msg, m.keys.NextMonth):
		m.month = m.month.AddDate(0, 1, 0)
		return true, m.startStats()
	}
	return false, nil
}

// switchTab moves by step through the tabs, wrapping around.
func (m *Model) switchTab(step int) tea.Cmd {
	idx := 0
	for i, s := range tabs {
		if s == m.state {
			idx = i
		}
	}
	m.state = tabs[(idx+step+len(tabs))%len(tabs)]
	if m.state == constants.StateStats {
		return m.startStats()
	}
	return nil
}

func (m *Model) startStats() tea.Cmd {
	cmd := m.loadStats()
	m.statsLoading = cmd != nil
	return cmd
}

func (m Model) handleEvents(msg eventsMsg) (tea.Model, tea.Cmd) {
	wasSignedIn, lastEmail := m.signedIn, m.user.Email
	if msg.changed {
		m.sync()
	}
	if n := len(msg.notes); n > 0 {
		last := msg.notes[n-1]
		m.setStatus(last.Text, last.Level == notifier.LevelError)
	}
	cmds := []tea.Cmd{m.box.listen()}
	if wasSignedIn && !m.signedIn && m.state != constants.StateSignIn {
		m.stats, m.calendar = nil, nil
		cmds = append(cmds, m.openSignIn(lastEmail))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case msg.err == nil:
		if msg.status != "" {
			m.setStatus(msg.status, false)
		}
	case errors.Is(msg.err, store.ErrStale):
		// the session changed underneath; the next snapshot says what to show
	case needsSignIn(msg.err):
		if m.state != constants.StateSignIn {
			cmds = append(cmds, m.openSignIn(m.user.Email))
		}
	default:
		// backend failures were already announced by the store or session
		var apiErr *api.Error
		if !errors.As(msg.err, &apiErr) {
			m.setStatus(msg.err.Error(), true)
		}
	}
	if msg.reload {
		cmds = append(cmds, m.loadInactive())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateSignIn(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			// browse whatever is cached
			m.state = m.previousState
			m.form = nil
			return m, nil
		}
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.setStatus("Signing in...", false)
		cmds = append(cmds, m.signIn(m.signInForm.Email, m.signInForm.Password))
	case huh.StateAborted:
		m.state = m.previousState
		m.form = nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateHabitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateHabits
		m.form, m.editing = nil, nil
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if m.editing != nil {
			upd := habitUpdate(*m.editing, *m.habitForm)
			if r := validation.HabitUpdate(upd); r.HasIssues() {
				m.setStatus(r.Err().Error(), true)
				m.form.State = huh.StateNormal
				break
			}
			if !upd.Empty() {
				cmds = append(cmds, m.updateHabit(m.editing.ID, upd))
			}
		} else {
			in := m.settings.ApplyDefaults(m.habitForm.input())
			if r := validation.HabitInput(in); r.HasIssues() {
				m.setStatus(r.Err().Error(), true)
				m.form.State = huh.StateNormal
				break
			}
			cmds = append(cmds, m.createHabit(in))
		}
		m.state = constants.StateHabits
		m.form, m.editing = nil, nil
	case huh.StateAborted:
		m.state = constants.StateHabits
		m.form, m.editing = nil, nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch msgKey.String() {
	case "y", "Y":
		var cmd tea.Cmd
		if m.pendingDelete != nil {
			cmd = m.deleteHabit(m.pendingDelete.ID)
		}
		m.pendingDelete = nil
		m.state = constants.StateHabits
		return m, cmd
	case "n", "N", "esc", "q":
		m.pendingDelete = nil
		m.state = constants.StateHabits
	}
	return m, nil
}
