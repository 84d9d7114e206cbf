package settings

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	APIURL          *string `name:"set-api-url" help:"Save the backend base URL, e.g. http://localhost:5000/api."`
	DefaultEmoji    *string `help:"Emoji used when a new habit has none."`
	DefaultCategory *string `help:"Category used when a new habit has none."`
	DefaultColor    *string `help:"Hex color used when a new habit has none."`
	StatsDays       *int    `help:"Default window for 'progress stats'."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Local.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	settings = settings.WithDefaults()

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  API URL:          %s\n", settings.APIURL)
		ctx.Printf("  Default Emoji:    %s\n", settings.DefaultEmoji)
		ctx.Printf("  Default Category: %s\n", settings.DefaultCategory)
		ctx.Printf("  Default Color:    %s\n", settings.DefaultColor)
		ctx.Printf("  Stats Days:       %d\n", settings.StatsDays)
		return nil
	}

	updated := false
	if c.APIURL != nil {
		client, err := api.New(*c.APIURL)
		if err != nil {
			return err
		}
		settings.APIURL = client.BaseURL()
		updated = true
	}
	if c.DefaultEmoji != nil {
		settings.DefaultEmoji = *c.DefaultEmoji
		updated = true
	}
	if c.DefaultCategory != nil {
		settings.DefaultCategory = *c.DefaultCategory
		updated = true
	}
	if c.DefaultColor != nil {
		if !validation.Color(*c.DefaultColor) {
			return fmt.Errorf("color %q must look like #RRGGBB", *c.DefaultColor)
		}
		settings.DefaultColor = *c.DefaultColor
		updated = true
	}
	if c.StatsDays != nil {
		if err := validation.Days(*c.StatsDays); err != nil {
			return err
		}
		settings.StatsDays = *c.StatsDays
		updated = true
	}

	if updated {
		if err := ctx.Local.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
