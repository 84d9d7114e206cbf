package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/validation"
)

type HabitCmd struct {
	List       HabitListCmd       `cmd:"" help:"List habits." default:"1"`
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	Edit       HabitEditCmd       `cmd:"" help:"Edit a habit."`
	Delete     HabitDeleteCmd     `cmd:"" help:"Delete a habit and its history."`
	Deactivate HabitDeactivateCmd `cmd:"" help:"Stop tracking a habit without deleting it."`
	Activate   HabitActivateCmd   `cmd:"" help:"Resume tracking an inactive habit."`
	Categories HabitCategoriesCmd `cmd:"" help:"List the categories in use."`
}

type HabitListCmd struct {
	All bool `help:"Include inactive habits." short:"a"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}

	var habits []models.Habit
	if c.All {
		all, err := ctx.Client.ListHabits(ctx.Context(), false)
		if err != nil {
			return err
		}
		habits = all
	} else {
		snap, err := ctx.Ready()
		if err != nil {
			return cli.Notified(err)
		}
		habits = snap.Habits
	}

	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'habitual habit add <name>'.")
		return nil
	}
	for _, h := range habits {
		printHabit(ctx, h)
	}
	return nil
}

func printHabit(ctx *cli.Context, h models.Habit) {
	status := ""
	if !h.IsActive {
		status = " [INACTIVE]"
	}
	ctx.Printf("%-4s %s %-24s %-12s streak %d (best %d)%s\n",
		h.ID, h.Emoji, h.Name, h.Category, h.CurrentStreak, h.LongestStreak, status)
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Optional description."`
	Emoji       string `help:"Emoji shown next to the habit (default from settings)."`
	Category    string `help:"Category (default from settings)."`
	Color       string `help:"Hex color such as #3B82F6 (default from settings)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Local.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	in := settings.WithDefaults().ApplyDefaults(models.HabitInput{
		Name:        strings.TrimSpace(c.Name),
		Description: c.Description,
		Emoji:       c.Emoji,
		Category:    c.Category,
		Color:       c.Color,
	})
	if res := validation.HabitInput(in); res.HasIssues() {
		return res.Err()
	}

	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	snap, err := ctx.Ready()
	if err != nil {
		return cli.Notified(err)
	}
	for _, h := range snap.Habits {
		if strings.EqualFold(h.Name, in.Name) {
			return fmt.Errorf("habit with name %q already exists", in.Name)
		}
	}

	habit, err := ctx.Habits().CreateHabit(ctx.Context(), in)
	if err != nil {
		return cli.Notified(err)
	}
	ctx.Printf("Added habit: %s %s (ID %s)\n", habit.Emoji, habit.Name, habit.ID)
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit name or ID."`
	Name        *string `help:"New name."`
	Description *string `help:"New description."`
	Emoji       *string `help:"New emoji."`
	Category    *string `help:"New category."`
	Color       *string `help:"New hex color."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	upd := models.HabitUpdate{
		Name:        c.Name,
		Description: c.Description,
		Emoji:       c.Emoji,
		Category:    c.Category,
		Color:       c.Color,
	}
	if upd.Empty() {
		ctx.Println("No changes specified. Use flags such as --name or --color to edit the habit.")
		return nil
	}
	if res := validation.HabitUpdate(upd); res.HasIssues() {
		return res.Err()
	}
	return update(ctx, c.Habit, upd, "Updated habit: %s\n")
}

type HabitDeactivateCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitDeactivateCmd) Run(ctx *cli.Context) error {
	active := false
	return update(ctx, c.Habit, models.HabitUpdate{IsActive: &active}, "Deactivated habit: %s\n")
}

type HabitActivateCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitActivateCmd) Run(ctx *cli.Context) error {
	active := true
	return update(ctx, c.Habit, models.HabitUpdate{IsActive: &active}, "Activated habit: %s\n")
}

func update(ctx *cli.Context, ref string, upd models.HabitUpdate, format string) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	habit, err := ctx.FindHabit(ref)
	if err != nil {
		return err
	}
	if _, err := ctx.Ready(); err != nil {
		return cli.Notified(err)
	}
	updated, err := ctx.Habits().UpdateHabit(ctx.Context(), habit.ID, upd)
	if err != nil {
		return cli.Notified(err)
	}
	ctx.Printf(format, updated.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Yes   bool   `help:"Do not ask for confirmation." short:"y"`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q and all of its progress?", habit.Name))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}
	if _, err := ctx.Ready(); err != nil {
		return cli.Notified(err)
	}
	if err := ctx.Habits().DeleteHabit(ctx.Context(), habit.ID); err != nil {
		return cli.Notified(err)
	}
	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitCategoriesCmd struct{}

func (c *HabitCategoriesCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	categories, err := ctx.Client.HabitCategories(ctx.Context())
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		ctx.Println("No categories yet.")
		return nil
	}
	for _, name := range categories {
		ctx.Println(name)
	}
	return nil
}
