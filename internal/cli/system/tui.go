package system

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Local.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// show the last saved data while the session is checked
	habits := ctx.Habits()
	cachedAt, _, err := habits.Hydrate()
	if err != nil {
		logger.Warn("Failed to read offline cache", "error", err)
	}

	offline := false
	if err := ctx.Session.Restore(ctx.Context()); err != nil {
		var apiErr *api.Error
		offline = errors.As(err, &apiErr) && apiErr.Status == 0
		logger.Warn("Could not resume saved session", "offline", offline, "error", err)
	}

	model := tui.NewModel(tui.Config{
		Context:  ctx.Context(),
		Store:    habits,
		Session:  ctx.Session,
		Client:   ctx.Client,
		Settings: settings,
		Now:      ctx.Now,
		CachedAt: cachedAt,
		Offline:  offline,
	})
	defer model.Close()

	prev := ctx.Notifier.Set(model.Notifier())
	defer ctx.Notifier.Set(prev)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
