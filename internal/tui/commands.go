package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/store"
)

// opDoneMsg reports the end of a background operation. Failures from the
// store and the session have already been sent to the status bar; status is
// an extra line for successes they do not announce.
type opDoneMsg struct {
	err    error
	status string
	// reload asks for the inactive habits to be fetched again.
	reload bool
}

type signInDoneMsg struct {
	email string
	err   error
}

type inactiveMsg struct {
	habits []models.Habit
	err    error
}

type statsMsg struct {
	stats    models.ProgressStats
	calendar []models.ProgressRecord
	err      error
}

func (m Model) toggle(id models.ID, name string) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		res, err := s.ToggleHabitCompletion(ctx, id, "")
		if err != nil {
			return opDoneMsg{err: err}
		}
		if res.Completed {
			return opDoneMsg{status: fmt.Sprintf("Marked %q done", name)}
		}
		return opDoneMsg{status: fmt.Sprintf("Unmarked %q", name)}
	}
}

func (m Model) createHabit(in models.HabitInput) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		_, err := s.CreateHabit(ctx, in)
		return opDoneMsg{err: err}
	}
}

func (m Model) updateHabit(id models.ID, upd models.HabitUpdate) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		_, err := s.UpdateHabit(ctx, id, upd)
		return opDoneMsg{err: err, reload: true}
	}
}

// setActive pauses or resumes a habit. The store only caches active habits,
// so they are reloaded afterwards.
func (m Model) setActive(h models.Habit, active bool) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		if _, err := s.UpdateHabit(ctx, h.ID, models.HabitUpdate{IsActive: &active}); err != nil {
			return opDoneMsg{err: err}
		}
		err := s.Refresh(ctx)
		status := fmt.Sprintf("Deactivated %q", h.Name)
		if active {
			status = fmt.Sprintf("Activated %q", h.Name)
		}
		return opDoneMsg{err: err, status: status, reload: true}
	}
}

func (m Model) deleteHabit(id models.ID) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		return opDoneMsg{err: s.DeleteHabit(ctx, id), reload: true}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		return opDoneMsg{err: s.Refresh(ctx), reload: true}
	}
}

func (m Model) signIn(email, password string) tea.Cmd {
	ctx, p := m.ctx, m.session
	return func() tea.Msg {
		_, err := p.SignIn(ctx, email, password)
		return signInDoneMsg{email: email, err: err}
	}
}

func (m Model) signOut() tea.Cmd {
	ctx, p := m.ctx, m.session
	return func() tea.Msg {
		return opDoneMsg{err: p.SignOut(ctx)}
	}
}

// loadInactive fetches the habits the store does not cache.
func (m Model) loadInactive() tea.Cmd {
	if !m.signedIn || m.client == nil {
		return nil
	}
	ctx, c := m.ctx, m.client
	return func() tea.Msg {
		all, err := c.ListHabits(ctx, false)
		if err != nil {
			return inactiveMsg{err: err}
		}
		var inactive []models.Habit
		for _, h := range all {
			if !h.IsActive {
				inactive = append(inactive, h)
			}
		}
		return inactiveMsg{habits: inactive}
	}
}

// loadStats fetches the completion summary and the calendar month shown on
// the stats tab.
func (m Model) loadStats() tea.Cmd {
	if !m.signedIn || m.client == nil {
		return nil
	}
	ctx, c := m.ctx, m.client
	days, month := m.settings.StatsDays, m.month
	return func() tea.Msg {
		var msg statsMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.stats, err = c.ProgressStats(gctx, api.StatsQuery{Days: days})
			return err
		})
		g.Go(func() error {
			var err error
			msg.calendar, err = c.ProgressCalendar(gctx, month.Year(), int(month.Month()), "")
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// needsSignIn reports whether err means the user has to sign in again.
func needsSignIn(err error) bool {
	return errors.Is(err, store.ErrNoSession) || api.IsUnauthorized(err)
}
