// Package tui is the interactive front end: today's checklist, habit
// management and a stats view, all driven by the habit store.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/store"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
	"github.com/julianstephens/habitual/internal/tui/components/today"
)

// tabs are the top-level views, in display order.
var tabs = []constants.SessionState{constants.StateToday, constants.StateHabits, constants.StateStats}

type Config struct {
	Context  context.Context
	Store    *store.Store
	Session  *session.Provider
	Client   *api.Client
	Settings models.Settings
	Now      func() time.Time
	// CachedAt is when the offline snapshot shown before the first load was
	// saved. Zero when nothing was hydrated.
	CachedAt time.Time
	// Offline skips the initial sign-in form when the saved session could
	// not be checked.
	Offline bool
}

type HabitFormModel struct {
	Name        string
	Description string
	Emoji       string
	Category    string
	Color       string
}

type SignInFormModel struct {
	Email    string
	Password string
}

type Model struct {
	ctx      context.Context
	store    *store.Store
	session  *session.Provider
	client   *api.Client
	settings models.Settings
	now      func() time.Time
	box      *mailbox

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	todayModel    today.Model
	habitsModel   habits.Model

	snap     store.Snapshot
	inactive []models.Habit
	user     models.User
	signedIn bool
	cachedAt time.Time

	form          *huh.Form
	habitForm     *HabitFormModel
	signInForm    *SignInFormModel
	editing       *models.Habit
	pendingDelete *models.Habit

	month        time.Time
	stats        *models.ProgressStats
	calendar     []models.ProgressRecord
	statsErr     string
	statsLoading bool

	status    string
	statusErr bool
	quitting  bool
	width     int
	height    int
}

// NewModel builds the program model and subscribes it to the store and the
// session. Call Close when the program exits.
func NewModel(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	box := newMailbox()
	box.cleanup = append(box.cleanup,
		cfg.Store.Subscribe(func(store.Snapshot) { box.markChanged() }),
		cfg.Session.Subscribe(func(models.User, bool) { box.markChanged() }),
	)

	t := now()
	m := Model{
		ctx:         ctx,
		store:       cfg.Store,
		session:     cfg.Session,
		client:      cfg.Client,
		settings:    cfg.Settings.WithDefaults(),
		now:         now,
		box:         box,
		state:       constants.StateToday,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		todayModel:  today.New(nil, 0, 0),
		habitsModel: habits.New(nil, 0, 0),
		cachedAt:    cfg.CachedAt,
		month:       time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()),
	}
	m.sync()
	if !m.signedIn && !cfg.Offline {
		m.openSignIn("")
	}
	return m
}

// Notifier routes notifications to the status bar.
func (m Model) Notifier() notifier.Notifier {
	return m.box
}

// Close detaches the model from the store and the session.
func (m Model) Close() {
	m.box.close()
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.box.listen(), m.loadInactive()}
	if m.form != nil {
		cmds = append(cmds, m.form.Init())
	}
	return tea.Batch(cmds...)
}

// sync pulls the latest snapshot and session state into the views.
func (m *Model) sync() {
	m.snap = m.store.Snapshot()
	m.user, m.signedIn = m.session.User()
	if !m.signedIn {
		m.inactive = nil
	}
	m.todayModel.SetEntries(m.snap.Today)
	m.habitsModel.SetHabits(m.allHabits())
}

// allHabits lists the cached active habits followed by inactive ones.
func (m Model) allHabits() []models.Habit {
	seen := make(map[models.ID]bool, len(m.snap.Habits))
	out := make([]models.Habit, 0, len(m.snap.Habits)+len(m.inactive))
	for _, h := range m.snap.Habits {
		seen[h.ID] = true
		out = append(out, h)
	}
	for _, h := range m.inactive {
		if !seen[h.ID] {
			out = append(out, h)
		}
	}
	return out
}

func (m Model) todayDate() string {
	return m.now().Format(constants.DateFormat)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

func (m Model) filtering() bool {
	switch m.state {
	case constants.StateToday:
		return m.todayModel.Filtering()
	case constants.StateHabits:
		return m.habitsModel.Filtering()
	}
	return false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateToday:
		keys = append(keys, m.todayModel.Keys().Toggle)
	case constants.StateHabits:
		hk := m.habitsModel.Keys()
		keys = append(keys, hk.Add, hk.Edit, hk.Delete, hk.Pause)
	case constants.StateStats:
		keys = append(keys, m.keys.PrevMonth, m.keys.NextMonth)
	}
	return append(keys, m.keys.Refresh)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh, m.keys.Account}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case constants.StateToday:
		actions = []key.Binding{m.todayModel.Keys().Toggle}
	case constants.StateHabits:
		hk := m.habitsModel.Keys()
		actions = []key.Binding{hk.Add, hk.Edit, hk.Delete, hk.Pause}
	case constants.StateStats:
		actions = []key.Binding{m.keys.PrevMonth, m.keys.NextMonth}
	}
	return [][]key.Binding{global, navigation, actions}
}
