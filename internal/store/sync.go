package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/notifier"
)

// begin marks a fetch as in flight and returns the session epoch it belongs to.
func (s *Store) begin() (uint64, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return 0, ErrNoSession
	}
	s.inflight++
	s.snap.Status = StatusLoading
	epoch := s.epoch
	s.commitLocked()
	return epoch, nil
}

// finish settles a fetch started by begin. Results from an older epoch are
// dropped and finish reports false.
func (s *Store) finish(epoch uint64, err error, apply func(*Snapshot)) bool {
	s.mu.Lock()
	if !s.active || epoch != s.epoch {
		s.mu.Unlock()
		logger.Debug("Discarding response from a previous session", "epoch", epoch)
		return false
	}
	s.inflight--
	if err != nil {
		s.snap.Status = StatusError
		s.snap.Err = err
	} else {
		apply(&s.snap)
		s.snap.Err = nil
		s.snap.Status = s.settledStatusLocked()
	}
	snap := s.commitLocked()
	if snap.Status == StatusReady {
		s.persist(snap, epoch)
	}
	return true
}

func (s *Store) settledStatusLocked() Status {
	if s.inflight > 0 {
		return StatusLoading
	}
	return StatusReady
}

// FetchHabits replaces the cached habits with the active habits on the
// backend.
func (s *Store) FetchHabits(ctx context.Context) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}
	habits, err := s.api.ListHabits(ctx, true)
	if !s.finish(epoch, err, func(snap *Snapshot) { snap.Habits = habits }) {
		return ErrStale
	}
	if err != nil {
		notifier.Error(s.notify, constants.MsgLoadHabitsFailed)
		return err
	}
	return nil
}

// FetchTodayProgress replaces the cached today entries.
func (s *Store) FetchTodayProgress(ctx context.Context) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}
	today, err := s.api.TodayProgress(ctx)
	if !s.finish(epoch, err, func(snap *Snapshot) { snap.Today = today }) {
		return ErrStale
	}
	if err != nil {
		notifier.Error(s.notify, constants.MsgLoadTodayFailed)
		return err
	}
	return nil
}

// Refresh fetches both collections concurrently. Each fetch settles on its
// own; the first error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.FetchHabits(ctx) })
	g.Go(func() error { return s.FetchTodayProgress(ctx) })
	return g.Wait()
}
