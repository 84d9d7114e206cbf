package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/store"
)

// settleTimeout bounds how long Close waits for background refreshes.
const settleTimeout = 5 * time.Second

// Context is shared by every command.
type Context struct {
	Local   storage.Provider
	Client  *api.Client
	Session *session.Provider
	// Notifier forwards to the console until the TUI takes over.
	Notifier *notifier.Relay
	Out      io.Writer
	Now      func() time.Time

	// Prompt asks for a line of input; secret hides what is typed.
	Prompt func(title string, secret bool) (string, error)
	// Confirm asks a yes/no question.
	Confirm func(title string) (bool, error)

	ctx       context.Context
	storeOnce sync.Once
	habits    *store.Store
}

// Options configures Open.
type Options struct {
	// APIURL overrides the saved api_url setting when non-empty.
	APIURL      string
	Credentials session.CredentialStore
	Notifier    notifier.Notifier
	Out         io.Writer
	Now         func() time.Time
	Context     context.Context
	ClientOpts  []api.Option
}

// NewStorage picks the local storage backend for config: a PostgreSQL
// connection string or a SQLite file path.
func NewStorage(config string) (storage.Provider, error) {
	if postgres.IsConnString(config) {
		if err := postgres.ValidateConnString(config); err != nil {
			return nil, err
		}
		return postgres.New(config), nil
	}
	return sqlite.NewStore(config), nil
}

// Open wires the API client, session and habit store on top of an already
// loaded local store.
func Open(local storage.Provider, opts Options) (*Context, error) {
	settings, err := local.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	baseURL := ResolveAPIURL(opts.APIURL, settings)
	client, err := api.New(baseURL, opts.ClientOpts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using API", "url", client.BaseURL())

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	target := opts.Notifier
	if target == nil {
		target = notifier.NewConsole(os.Stderr)
	}
	notify := notifier.NewRelay(target)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return &Context{
		Local:  local,
		Client: client,
		Session: session.New(session.Config{
			Client:      client,
			Local:       local,
			Credentials: opts.Credentials,
			Notifier:    notify,
		}),
		Notifier: notify,
		Out:      out,
		Now:      now,
		Prompt:   promptLine,
		Confirm:  promptConfirm,
		ctx:      ctx,
	}, nil
}

// NewLocal returns a context that only carries local storage, for commands
// that run before the store is loaded.
func NewLocal(local storage.Provider, out io.Writer) *Context {
	if out == nil {
		out = os.Stdout
	}
	return &Context{
		Local:    local,
		Notifier: notifier.NewRelay(notifier.NewConsole(os.Stderr)),
		Out:      out,
		Now:      time.Now,
		Prompt:   promptLine,
		Confirm:  promptConfirm,
	}
}

// ResolveAPIURL applies flag/env > saved setting > built-in default.
func ResolveAPIURL(override string, settings models.Settings) string {
	for _, candidate := range []string{override, settings.APIURL} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return constants.DefaultAPIURL
}

// Context returns the context commands run under.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Habits returns the habit store, creating it on first use. A store created
// while signed in starts loading immediately.
func (c *Context) Habits() *store.Store {
	c.storeOnce.Do(func() {
		c.habits = store.New(store.Config{
			API:      c.Client,
			Session:  c.Session,
			Notifier: c.Notifier,
			Local:    c.Local,
			Now:      c.Now,
		})
	})
	return c.habits
}

// RequireSession resumes the saved session if needed and returns the
// signed-in user, or store.ErrNoSession.
func (c *Context) RequireSession() (models.User, error) {
	if user, ok := c.Session.User(); ok {
		return user, nil
	}
	if err := c.Session.Restore(c.Context()); err != nil {
		return models.User{}, err
	}
	if user, ok := c.Session.User(); ok {
		return user, nil
	}
	return models.User{}, store.ErrNoSession
}

// Ready waits for the habit store's initial load and returns its snapshot.
// A failed fetch is reported even when the other one settled the store as
// ready.
func (c *Context) Ready() (store.Snapshot, error) {
	s := c.Habits()
	if err := s.WaitSynced(c.Context()); err != nil {
		return s.Snapshot(), err
	}
	if err := s.Wait(c.Context()); err != nil {
		return store.Snapshot{}, err
	}
	snap := s.Snapshot()
	if snap.Status == store.StatusError {
		return snap, snap.Err
	}
	return snap, nil
}

// Today returns the current local calendar day.
func (c *Context) Today() string {
	return c.Now().Format(constants.DateFormat)
}

// FindHabit looks a habit up by ID or, case-insensitively, by name. Inactive
// habits are included.
func (c *Context) FindHabit(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, errors.New("habit name or ID is required")
	}
	habits, err := c.Client.ListHabits(c.Context(), false)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if h.ID.String() == ref {
			return h, nil
		}
	}
	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("habit name %q is ambiguous, use its ID instead", ref)
	}
}

// Close lets background refreshes settle, then releases the store, the
// session and local storage.
func (c *Context) Close() error {
	if c.habits != nil {
		ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
		if err := c.habits.Wait(ctx); err != nil {
			logger.Warn("Background refresh did not settle", "error", err)
		}
		cancel()
		c.habits.Close()
	}
	return c.Local.Close()
}

func promptLine(title string, secret bool) (string, error) {
	var value string
	input := huh.NewInput().Title(title).Value(&value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if err := huh.NewForm(huh.NewGroup(input)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func promptConfirm(title string) (bool, error) {
	var ok bool
	confirm := huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok)
	if err := huh.NewForm(huh.NewGroup(confirm)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// Ask returns value when set, otherwise prompts for it.
func (c *Context) Ask(value, title string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	if c.Prompt == nil {
		return "", fmt.Errorf("%s is required", strings.ToLower(title))
	}
	return c.Prompt(title, secret)
}

// Notified marks backend failures that the session or store already
// surfaced through the notifier.
func Notified(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apperrors.Reported(err)
	}
	return err
}
