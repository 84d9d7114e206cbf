// Package store keeps the client-side cache of habits and today's progress in
// sync with the backend.
//
// Every change produces a new immutable Snapshot delivered to subscribers.
// Slices inside a Snapshot are never modified after delivery.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/storage"
)

var (
	// ErrNoSession is returned, without issuing a request, when no user is
	// signed in.
	ErrNoSession = errors.New("no active session")
	// ErrStale is returned when the session changed while a mutation was in
	// flight; its result was discarded.
	ErrStale = errors.New("session changed before the response arrived")
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Snapshot is one immutable view of the cache.
type Snapshot struct {
	Version uint64
	Status  Status
	Habits  []models.Habit
	Today   []models.TodayEntry
	// Err is the failure behind StatusError.
	Err error
}

// API is the slice of the backend client the store needs. *api.Client
// satisfies it.
type API interface {
	ListHabits(ctx context.Context, activeOnly bool) ([]models.Habit, error)
	TodayProgress(ctx context.Context) ([]models.TodayEntry, error)
	CreateHabit(ctx context.Context, in models.HabitInput) (models.Habit, error)
	UpdateHabit(ctx context.Context, id models.ID, upd models.HabitUpdate) (models.Habit, error)
	DeleteHabit(ctx context.Context, id models.ID) error
	ToggleProgress(ctx context.Context, habitID models.ID, date string) (models.ToggleResult, error)
}

// Session reports the signed-in user. *session.Provider satisfies it.
type Session interface {
	User() (models.User, bool)
	Subscribe(fn func(models.User, bool)) (unsubscribe func())
}

type Config struct {
	API      API
	Session  Session
	Notifier notifier.Notifier
	// Local, when set, keeps the last ready snapshot for offline display.
	Local storage.Provider
	// Now defaults to time.Now. Today is derived from it in local time.
	Now func() time.Time
}

type Store struct {
	api    API
	notify notifier.Notifier
	local  storage.Provider
	now    func() time.Time

	mu       sync.Mutex
	snap     Snapshot
	active   bool
	epoch    uint64
	inflight int
	// synced is the refresh started by the latest sign-in.
	synced  *Task
	subs    map[int]func(Snapshot)
	nextSub int

	// deliverMu keeps deliveries in commit order.
	deliverMu sync.Mutex

	persistMu        sync.Mutex
	persistedVersion uint64

	tasks       sync.WaitGroup
	bg          context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// New creates a store bound to a session. If a user is already signed in,
// both collections start loading immediately.
func New(cfg Config) *Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	bg, cancel := context.WithCancel(context.Background())
	s := &Store{
		api:    cfg.API,
		notify: cfg.Notifier,
		local:  cfg.Local,
		now:    now,
		snap:   Snapshot{Status: StatusIdle},
		subs:   make(map[int]func(Snapshot)),
		bg:     bg,
		cancel: cancel,
	}
	if cfg.Session != nil {
		s.unsubscribe = cfg.Session.Subscribe(s.onSession)
		if user, ok := cfg.Session.User(); ok {
			s.onSession(user, true)
		}
	}
	return s
}

// Close stops background work and detaches from the session.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.cancel()
	s.tasks.Wait()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn for every new snapshot. Deliveries are serialized in
// commit order. fn must not block and must not call mutating store methods
// synchronously.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// commitLocked publishes s.snap as a new version. It must be called with mu
// held and releases it.
func (s *Store) commitLocked() Snapshot {
	s.snap.Version++
	snap := s.snap
	subs := make([]func(Snapshot), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.deliverMu.Lock()
	s.mu.Unlock()
	defer s.deliverMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// Today returns the current local calendar day.
func (s *Store) Today() string {
	return s.now().Format(constants.DateFormat)
}

func (s *Store) onSession(_ models.User, signedIn bool) {
	// A persist that already checked its epoch completes before the epoch
	// moves on.
	s.persistMu.Lock()
	s.mu.Lock()
	s.epoch++
	s.inflight = 0
	s.active = signedIn
	s.synced = nil
	if !signedIn {
		s.snap.Habits = nil
		s.snap.Today = nil
		s.snap.Status = StatusIdle
		s.snap.Err = nil
	}
	s.commitLocked()
	s.persistMu.Unlock()

	if signedIn {
		t := s.spawn(s.Refresh)
		s.mu.Lock()
		s.synced = t
		s.mu.Unlock()
	}
}

// spawn runs fn in the background on the store's lifetime context.
func (s *Store) spawn(fn func(context.Context) error) *Task {
	t := &Task{done: make(chan struct{})}
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		defer close(t.done)
		t.err = fn(s.bg)
	}()
	return t
}

// Wait blocks until every background task (session syncs, toggle
// refreshes) has finished.
func (s *Store) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitSynced blocks until the refresh started by the latest sign-in has
// finished and returns its error. It returns nil when none was started.
func (s *Store) WaitSynced(ctx context.Context) error {
	s.mu.Lock()
	t := s.synced
	s.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Wait(ctx)
}

// current reports whether epoch still names the live session.
func (s *Store) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && epoch == s.epoch
}

// guard checks for a session and returns its epoch.
func (s *Store) guard() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return 0, ErrNoSession
	}
	return s.epoch, nil
}

// persist saves a ready snapshot for offline display.
func (s *Store) persist(snap Snapshot, epoch uint64) {
	if s.local == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if snap.Version <= s.persistedVersion || !s.current(epoch) {
		return
	}
	s.persistedVersion = snap.Version

	habits, today := snap.Habits, snap.Today
	if habits == nil {
		habits = []models.Habit{}
	}
	if today == nil {
		today = []models.TodayEntry{}
	}
	for key, v := range map[string]any{
		constants.KeyCachedHabits:  habits,
		constants.KeyCachedToday:   today,
		constants.KeyCachedSavedAt: s.now().UTC().Format(time.RFC3339),
	} {
		if err := storage.SaveJSON(s.local, key, v); err != nil {
			logger.Warn("Failed to cache snapshot", "key", key, "error", err)
			return
		}
	}
}

// Hydrate fills an empty idle store from the local cache. It reports whether
// cached data was found and returns the time it was saved.
func (s *Store) Hydrate() (time.Time, bool, error) {
	if s.local == nil {
		return time.Time{}, false, nil
	}
	var (
		habits  []models.Habit
		today   []models.TodayEntry
		savedAt string
	)
	found, err := storage.LoadJSON(s.local, constants.KeyCachedHabits, &habits)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	if _, err := storage.LoadJSON(s.local, constants.KeyCachedToday, &today); err != nil {
		return time.Time{}, false, err
	}
	if _, err := storage.LoadJSON(s.local, constants.KeyCachedSavedAt, &savedAt); err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339, savedAt)
	if err != nil {
		logger.Warn("Ignoring unreadable cache timestamp", "value", savedAt, "error", err)
		at = time.Time{}
	}

	s.mu.Lock()
	if s.snap.Status != StatusIdle || s.snap.Habits != nil || s.snap.Today != nil {
		s.mu.Unlock()
		return at, false, nil
	}
	s.snap.Habits = habits
	s.snap.Today = today
	s.commitLocked()
	return at, true, nil
}
