package share

import (
	"errors"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
)

type ShareCmd struct {
	Stats  ShareStatsCmd  `cmd:"" help:"Preview what a share link would expose."`
	Create ShareCreateCmd `cmd:"" help:"Create a public share link."`
	List   ShareListCmd   `cmd:"" help:"List your share links." default:"1"`
	Delete ShareDeleteCmd `cmd:"" help:"Delete a share link."`
	View   ShareViewCmd   `cmd:"" help:"Show the public view behind a share link."`
}

type ShareStatsCmd struct{}

func (c *ShareStatsCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	preview, err := ctx.Client.ShareStats(ctx.Context())
	if err != nil {
		return err
	}
	printSummary(ctx, preview.Stats)
	printHabits(ctx, preview.Habits)
	return nil
}

type ShareCreateCmd struct {
	Title       string `arg:"" help:"Title shown on the share page."`
	Description string `help:"Optional description."`
	NoStats     bool   `help:"Do not include summary statistics."`
	NoHabits    bool   `help:"Do not include the habit list."`
}

func (c *ShareCreateCmd) Run(ctx *cli.Context) error {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return errors.New("share link title is required")
	}
	if c.NoStats && c.NoHabits {
		return errors.New("a share link must include stats, habits or both")
	}
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	link, err := ctx.Client.CreateShareLink(ctx.Context(), models.ShareRequest{
		Title:         title,
		Description:   c.Description,
		IncludeStats:  !c.NoStats,
		IncludeHabits: !c.NoHabits,
	})
	if err != nil {
		return err
	}
	notifier.Success(ctx.Notifier, constants.MsgShareLinkCreated)
	ctx.Printf("%s\n", link.URL)
	ctx.Printf("  ID: %s\n", link.ID)
	return nil
}

type ShareListCmd struct{}

func (c *ShareListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	links, err := ctx.Client.ShareLinks(ctx.Context())
	if err != nil {
		return err
	}
	if len(links) == 0 {
		ctx.Println("No share links. Create one with 'habitual share create <title>'.")
		return nil
	}
	for _, l := range links {
		var parts []string
		if l.IncludeStats {
			parts = append(parts, "stats")
		}
		if l.IncludeHabits {
			parts = append(parts, "habits")
		}
		ctx.Printf("%-8s %-24s %s  [%s]\n", l.ID, l.Title, l.CreatedAt.Local().Format(constants.DateFormat), strings.Join(parts, ","))
		ctx.Printf("         %s\n", l.URL)
	}
	return nil
}

type ShareDeleteCmd struct {
	ID string `arg:"" help:"Share link ID."`
}

func (c *ShareDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	if err := ctx.Client.DeleteShareLink(ctx.Context(), models.ID(c.ID)); err != nil {
		return err
	}
	notifier.Success(ctx.Notifier, constants.MsgShareLinkDeleted)
	return nil
}

type ShareViewCmd struct {
	ID string `arg:"" help:"Share link ID."`
}

// Run needs no session; share pages are public.
func (c *ShareViewCmd) Run(ctx *cli.Context) error {
	shared, err := ctx.Client.SharedProgress(ctx.Context(), models.ID(c.ID))
	if err != nil {
		return err
	}
	ctx.Printf("%s\n", shared.Title)
	if shared.UserName != "" {
		ctx.Printf("by %s\n", shared.UserName)
	}
	if shared.Description != "" {
		ctx.Printf("%s\n", shared.Description)
	}
	ctx.Println()
	if shared.Stats != nil {
		printSummary(ctx, *shared.Stats)
	}
	printHabits(ctx, shared.Habits)
	return nil
}

func printSummary(ctx *cli.Context, s models.SummaryStats) {
	ctx.Println("Summary:")
	ctx.Printf("  Habits:            %d\n", s.TotalHabits)
	ctx.Printf("  Completions:       %d\n", s.TotalCompletions)
	ctx.Printf("  Longest streak:    %d\n", s.LongestStreak)
	ctx.Printf("  Average streak:    %.1f\n", s.AverageStreak)
}

func printHabits(ctx *cli.Context, habits []models.Habit) {
	if len(habits) == 0 {
		return
	}
	ctx.Println("Habits:")
	for _, h := range habits {
		ctx.Printf("  %s %-24s streak %d (best %d)\n", h.Emoji, h.Name, h.CurrentStreak, h.LongestStreak)
	}
}
