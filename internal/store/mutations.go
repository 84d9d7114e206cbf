package store

import (
	"context"
	"errors"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
)

// Toggle is the outcome of ToggleHabitCompletion.
type Toggle struct {
	Completed bool
	Date      string
	// Refresh reloads habits so streaks reflect the toggle. It is already
	// running when the toggle returns.
	Refresh *Task
}

// mutate applies a confirmed server change. It reports false when the session
// changed since epoch.
func (s *Store) mutate(epoch uint64, apply func(*Snapshot)) bool {
	s.mu.Lock()
	if !s.active || epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	apply(&s.snap)
	if s.snap.Status == StatusError || s.snap.Status == StatusIdle {
		if s.inflight == 0 {
			s.snap.Status = StatusReady
			s.snap.Err = nil
		}
	}
	snap := s.commitLocked()
	if snap.Status == StatusReady {
		s.persist(snap, epoch)
	}
	return true
}

// fail surfaces a mutation error unless it belongs to a previous session.
func (s *Store) fail(epoch uint64, err error, fallback string) error {
	if s.current(epoch) {
		notifier.Error(s.notify, api.Message(err, fallback))
	}
	return err
}

func (s *Store) refreshToday(ctx context.Context) {
	if err := s.FetchTodayProgress(ctx); err != nil && !errors.Is(err, ErrNoSession) && !errors.Is(err, ErrStale) {
		logger.Debug("Today refresh after mutation failed", "error", err)
	}
}

// CreateHabit creates a habit, appends it to the cache and reloads today's
// entries. On failure the cache is untouched.
func (s *Store) CreateHabit(ctx context.Context, in models.HabitInput) (models.Habit, error) {
	epoch, err := s.guard()
	if err != nil {
		return models.Habit{}, err
	}
	habit, err := s.api.CreateHabit(ctx, in)
	if err != nil {
		return models.Habit{}, s.fail(epoch, err, constants.MsgCreateFailed)
	}
	if !s.mutate(epoch, func(snap *Snapshot) {
		habits := make([]models.Habit, 0, len(snap.Habits)+1)
		snap.Habits = append(append(habits, snap.Habits...), habit)
	}) {
		return models.Habit{}, ErrStale
	}
	notifier.Success(s.notify, constants.MsgHabitCreated)
	s.refreshToday(ctx)
	return habit, nil
}

// UpdateHabit replaces the cached habit in place, keeping order.
func (s *Store) UpdateHabit(ctx context.Context, id models.ID, upd models.HabitUpdate) (models.Habit, error) {
	epoch, err := s.guard()
	if err != nil {
		return models.Habit{}, err
	}
	habit, err := s.api.UpdateHabit(ctx, id, upd)
	if err != nil {
		return models.Habit{}, s.fail(epoch, err, constants.MsgUpdateFailed)
	}
	if !s.mutate(epoch, func(snap *Snapshot) {
		habits := make([]models.Habit, len(snap.Habits))
		for i, h := range snap.Habits {
			if h.ID == habit.ID {
				h = habit
			}
			habits[i] = h
		}
		snap.Habits = habits
	}) {
		return models.Habit{}, ErrStale
	}
	notifier.Success(s.notify, constants.MsgHabitUpdated)
	return habit, nil
}

// DeleteHabit removes the habit from the cache and reloads today's entries.
func (s *Store) DeleteHabit(ctx context.Context, id models.ID) error {
	epoch, err := s.guard()
	if err != nil {
		return err
	}
	if err := s.api.DeleteHabit(ctx, id); err != nil {
		return s.fail(epoch, err, constants.MsgDeleteFailed)
	}
	if !s.mutate(epoch, func(snap *Snapshot) {
		habits := make([]models.Habit, 0, len(snap.Habits))
		for _, h := range snap.Habits {
			if h.ID != id {
				habits = append(habits, h)
			}
		}
		today := make([]models.TodayEntry, 0, len(snap.Today))
		for _, e := range snap.Today {
			if e.Habit.ID != id {
				today = append(today, e)
			}
		}
		snap.Habits, snap.Today = habits, today
	}) {
		return ErrStale
	}
	notifier.Success(s.notify, constants.MsgHabitDeleted)
	s.refreshToday(ctx)
	return nil
}

// ToggleHabitCompletion flips completion of a habit on date (today when
// empty). The backend decides the resulting value. Only a toggle for today
// patches the cached today entries; a habit refresh is started afterwards in
// every case and returned as a Task.
func (s *Store) ToggleHabitCompletion(ctx context.Context, habitID models.ID, date string) (Toggle, error) {
	epoch, err := s.guard()
	if err != nil {
		return Toggle{}, err
	}
	today := s.Today()
	if date == "" {
		date = today
	}

	res, err := s.api.ToggleProgress(ctx, habitID, date)
	if err != nil {
		return Toggle{}, s.fail(epoch, err, constants.MsgToggleFailed)
	}

	if date == today {
		if !s.mutate(epoch, func(snap *Snapshot) {
			entries := make([]models.TodayEntry, len(snap.Today))
			for i, e := range snap.Today {
				if e.Habit.ID == habitID {
					e.Completed = res.Completed
				}
				entries[i] = e
			}
			snap.Today = entries
		}) {
			return Toggle{}, ErrStale
		}
	} else if !s.current(epoch) {
		return Toggle{}, ErrStale
	}

	refresh := s.spawn(s.FetchHabits)
	return Toggle{Completed: res.Completed, Date: date, Refresh: refresh}, nil
}
