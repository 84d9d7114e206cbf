package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/store"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateToday:
		content = m.viewToday()
	case constants.StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case constants.StateStats:
		content = docStyle.Render(m.viewStats())
	case constants.StateAddHabit, constants.StateEditHabit, constants.StateSignIn:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewBanner(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var out []string
	for i, title := range []string{"Today", "Habits", "Stats"} {
		if m.state == tabs[i] {
			out = append(out, activeTabStyle.Render(title))
		} else {
			out = append(out, inactiveTabStyle.Render(title))
		}
	}
	who := "not signed in"
	if m.signedIn {
		who = m.user.Name
		if who == "" {
			who = m.user.Email
		}
	}
	out = append(out, mutedStyle.Render("  "+who))
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

// viewBanner explains why the data on screen may be incomplete.
func (m Model) viewBanner() string {
	switch m.snap.Status {
	case store.StatusLoading:
		return warningStyle.Render("Loading...")
	case store.StatusError:
		msg := "⚠ Could not reach the server"
		if m.snap.Err != nil {
			msg = "⚠ " + m.snap.Err.Error()
		}
		return dangerStyle.Render(msg + " (press r to retry)")
	case store.StatusIdle:
		if !m.cachedAt.IsZero() && len(m.snap.Habits) > 0 {
			return warningStyle.Render("Offline: showing data saved " + m.cachedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	return ""
}

func (m Model) viewToday() string {
	done, total := m.todayModel.Completed()
	header := fmt.Sprintf("%s  %d/%d done", m.now().Format("Monday, January 2"), done, total)
	if total > 0 && done == total {
		header += "  " + successStyle.Render("all done!")
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.todayModel.View()))
}

func (m Model) viewStats() string {
	if !m.signedIn {
		return "Sign in to see your stats."
	}
	if m.statsErr != "" {
		return dangerStyle.Render(m.statsErr)
	}
	if m.statsLoading && m.stats == nil {
		return "Loading stats..."
	}
	if m.stats == nil {
		return "No stats loaded yet. Press r to refresh."
	}

	var b strings.Builder
	s := m.stats
	fmt.Fprintf(&b, "Last %d days\n", m.settings.StatsDays)
	fmt.Fprintf(&b, "  Completed days:  %d/%d\n", s.CompletedDays, s.TotalDays)
	fmt.Fprintf(&b, "  Missed days:     %d\n", s.MissedDays)
	fmt.Fprintf(&b, "  Completion rate: %.0f%%\n\n", s.CompletionRate)
	b.WriteString(RenderCalendar(m.month.Year(), m.month.Month(), m.calendar, m.todayDate()))
	return b.String()
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render("✗ " + m.status)
	}
	return successStyle.Render("✓ " + m.status)
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.pendingDelete != nil {
		name = m.pendingDelete.Name
	}
	return lipgloss.Place(m.width, max(m.height-6, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete habit %q and all of its progress?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
