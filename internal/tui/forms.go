package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/validation"
)

// NewHabitForm creates the add/edit habit form bound to fm.
func NewHabitForm(title string, fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					return validation.HabitInput(models.HabitInput{Name: s}).Err()
				}),
			huh.NewInput().
				Title("Emoji").
				Value(&fm.Emoji),
			huh.NewInput().
				Title("Category").
				Value(&fm.Category),
			huh.NewInput().
				Title("Color (#RRGGBB)").
				Value(&fm.Color).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s != "" && !validation.Color(s) {
						return fmt.Errorf("color must look like #RRGGBB")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&fm.Description),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewSignInForm creates the sign-in form bound to fm.
func NewSignInForm(fm *SignInFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(func(s string) error {
					return validation.Email(s).Err()
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fm.Password).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m *Model) openSignIn(email string) tea.Cmd {
	m.signInForm = &SignInFormModel{Email: email}
	m.form = NewSignInForm(m.signInForm)
	switch m.state {
	case constants.StateToday, constants.StateHabits, constants.StateStats:
		m.previousState = m.state
	case constants.StateSignIn:
	default:
		m.previousState = constants.StateToday
	}
	m.state = constants.StateSignIn
	return m.form.Init()
}

func (m *Model) openHabitForm(h *models.Habit) tea.Cmd {
	title := "New habit"
	fm := &HabitFormModel{
		Emoji:    m.settings.DefaultEmoji,
		Category: m.settings.DefaultCategory,
		Color:    m.settings.DefaultColor,
	}
	m.state = constants.StateAddHabit
	m.editing = nil
	if h != nil {
		title = "Edit habit"
		fm = &HabitFormModel{
			Name:        h.Name,
			Description: h.Description,
			Emoji:       h.Emoji,
			Category:    h.Category,
			Color:       h.Color,
		}
		edit := *h
		m.editing = &edit
		m.state = constants.StateEditHabit
	}
	m.habitForm = fm
	m.form = NewHabitForm(title, fm)
	return m.form.Init()
}

// habitUpdate returns the fields of the form that differ from h.
func habitUpdate(h models.Habit, fm HabitFormModel) models.HabitUpdate {
	var upd models.HabitUpdate
	diff := func(old, val string) *string {
		val = strings.TrimSpace(val)
		if val == old {
			return nil
		}
		return &val
	}
	upd.Name = diff(h.Name, fm.Name)
	upd.Description = diff(h.Description, fm.Description)
	upd.Emoji = diff(h.Emoji, fm.Emoji)
	upd.Category = diff(h.Category, fm.Category)
	upd.Color = diff(h.Color, fm.Color)
	return upd
}

func (fm HabitFormModel) input() models.HabitInput {
	return models.HabitInput{
		Name:        strings.TrimSpace(fm.Name),
		Description: strings.TrimSpace(fm.Description),
		Emoji:       strings.TrimSpace(fm.Emoji),
		Category:    strings.TrimSpace(fm.Category),
		Color:       strings.TrimSpace(fm.Color),
	}
}
