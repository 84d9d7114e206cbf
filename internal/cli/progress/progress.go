package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui"
	"github.com/julianstephens/habitual/internal/validation"
)

type ProgressCmd struct {
	Log      ProgressLogCmd      `cmd:"" help:"Show progress records." default:"1"`
	Stats    ProgressStatsCmd    `cmd:"" help:"Show completion statistics."`
	Calendar ProgressCalendarCmd `cmd:"" help:"Show a month of progress as a calendar."`
	Delete   ProgressDeleteCmd   `cmd:"" help:"Delete a progress record."`
}

type ProgressLogCmd struct {
	Habit string `help:"Only show records of this habit (name or ID)."`
	Days  int    `help:"Number of days to show, ending today." default:"14"`
	From  string `help:"First day (YYYY-MM-DD). Overrides --days."`
	To    string `help:"Last day (YYYY-MM-DD)." default:"today"`
}

func (c *ProgressLogCmd) Run(ctx *cli.Context) error {
	to, err := validation.ResolveDate(c.To, ctx.Now())
	if err != nil {
		return err
	}
	from := c.From
	if from == "" {
		if err := validation.Days(c.Days); err != nil {
			return err
		}
		end, _ := time.ParseInLocation(constants.DateFormat, to, time.Local)
		from = end.AddDate(0, 0, -(c.Days - 1)).Format(constants.DateFormat)
	} else if from, err = validation.ResolveDate(from, ctx.Now()); err != nil {
		return err
	}
	if from > to {
		return fmt.Errorf("--from %s is after --to %s", from, to)
	}

	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	habits, err := ctx.Client.ListHabits(ctx.Context(), false)
	if err != nil {
		return err
	}
	q := api.ProgressQuery{StartDate: from, EndDate: to}
	if c.Habit != "" {
		habit, err := ctx.FindHabit(c.Habit)
		if err != nil {
			return err
		}
		q.HabitID = habit.ID
	}
	records, err := ctx.Client.ListProgress(ctx.Context(), q)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		ctx.Printf("No progress recorded between %s and %s.\n", from, to)
		return nil
	}

	names := make(map[models.ID]models.Habit, len(habits))
	for _, h := range habits {
		names[h.ID] = h
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return names[records[i].HabitID].Name < names[records[j].HabitID].Name
	})

	ctx.Printf("Progress from %s to %s:\n\n", from, to)
	for _, r := range records {
		mark := "[ ]"
		if r.Completed {
			mark = "[x]"
		}
		h := names[r.HabitID]
		ctx.Printf("%s %s %s %-24s (record %s)\n", r.Date, mark, h.Emoji, h.Name, r.ID)
	}
	return nil
}

type ProgressStatsCmd struct {
	Habit string `help:"Only count this habit (name or ID)."`
	Days  int    `help:"Window length in days (default from settings)."`
}

func (c *ProgressStatsCmd) Run(ctx *cli.Context) error {
	days := c.Days
	if days == 0 {
		settings, err := ctx.Local.GetSettings()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		days = settings.WithDefaults().StatsDays
	}
	if err := validation.Days(days); err != nil {
		return err
	}

	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	q := api.StatsQuery{Days: days}
	label := "all habits"
	if c.Habit != "" {
		habit, err := ctx.FindHabit(c.Habit)
		if err != nil {
			return err
		}
		q.HabitID = habit.ID
		label = habit.Name
	}
	stats, err := ctx.Client.ProgressStats(ctx.Context(), q)
	if err != nil {
		return err
	}

	ctx.Printf("Last %d days (%s):\n", days, label)
	ctx.Printf("  Completed days:  %d/%d\n", stats.CompletedDays, stats.TotalDays)
	ctx.Printf("  Missed days:     %d\n", stats.MissedDays)
	ctx.Printf("  Completion rate: %.0f%%\n", stats.CompletionRate)
	return nil
}

type ProgressCalendarCmd struct {
	Month string `arg:"" optional:"" help:"Month as YYYY-MM (default: current month)."`
	Habit string `help:"Only show this habit (name or ID)."`
}

func (c *ProgressCalendarCmd) Run(ctx *cli.Context) error {
	year, month, err := validation.ParseMonth(c.Month, ctx.Now())
	if err != nil {
		return err
	}
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	var habitID models.ID
	if c.Habit != "" {
		habit, err := ctx.FindHabit(c.Habit)
		if err != nil {
			return err
		}
		habitID = habit.ID
	}
	records, err := ctx.Client.ProgressCalendar(ctx.Context(), year, int(month), habitID)
	if err != nil {
		return err
	}
	ctx.Println(tui.RenderCalendar(year, month, records, ctx.Today()))
	return nil
}

type ProgressDeleteCmd struct {
	ID string `arg:"" help:"Progress record ID (see 'habitual progress log')."`
}

func (c *ProgressDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	if err := ctx.Client.DeleteProgress(ctx.Context(), models.ID(c.ID)); err != nil {
		return err
	}
	ctx.Printf("Deleted progress record %s\n", c.ID)
	return nil
}
