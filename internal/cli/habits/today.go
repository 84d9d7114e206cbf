package habits

import (
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/validation"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	snap, err := ctx.Ready()
	if err != nil {
		return cli.Notified(err)
	}

	if len(snap.Today) == 0 {
		ctx.Println("No active habits. Add one with 'habitual habit add <name>'.")
		return nil
	}

	ctx.Printf("Habits for %s:\n\n", ctx.Habits().Today())
	done := 0
	for _, e := range snap.Today {
		mark := "[ ]"
		if e.Completed {
			mark = "[x]"
			done++
		}
		ctx.Printf("%s %s %-24s streak %d\n", mark, e.Habit.Emoji, e.Habit.Name, e.Habit.CurrentStreak)
	}
	ctx.Printf("\nCompleted: %d/%d\n", done, len(snap.Today))
	return nil
}

type ToggleCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `help:"Day to toggle: YYYY-MM-DD, today or yesterday." default:"today"`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	date, err := validation.ResolveDate(c.Date, ctx.Now())
	if err != nil {
		return err
	}
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if _, err := ctx.Ready(); err != nil {
		return cli.Notified(err)
	}

	res, err := ctx.Habits().ToggleHabitCompletion(ctx.Context(), habit.ID, date)
	if err != nil {
		return cli.Notified(err)
	}
	if res.Completed {
		ctx.Printf("Marked %q done for %s\n", habit.Name, res.Date)
	} else {
		ctx.Printf("Unmarked %q for %s\n", habit.Name, res.Date)
	}

	// streaks are only known once the backend has recomputed them
	if err := res.Refresh.Wait(ctx.Context()); err != nil {
		logger.Debug("Streak refresh after toggle failed", "error", err)
		return nil
	}
	for _, h := range ctx.Habits().Snapshot().Habits {
		if h.ID == habit.ID {
			ctx.Printf("Current streak: %d (best %d)\n", h.CurrentStreak, h.LongestStreak)
		}
	}
	return nil
}
