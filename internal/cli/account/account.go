package account

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/store"
	"github.com/julianstephens/habitual/internal/validation"
)

type LoginCmd struct {
	Email    string `help:"Account email." short:"e"`
	Password string `help:"Account password. Prompted for when omitted." env:"HABITUAL_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	email, err := ctx.Ask(c.Email, "Email", false)
	if err != nil {
		return err
	}
	password, err := ctx.Ask(c.Password, "Password", true)
	if err != nil {
		return err
	}
	if res := validation.Credentials(email, password); res.HasIssues() {
		return res.Err()
	}

	user, err := ctx.Session.SignIn(ctx.Context(), email, password)
	if err != nil {
		return cli.Notified(err)
	}
	ctx.Printf("Signed in as %s\n", displayName(user))
	return nil
}

type RegisterCmd struct {
	Email    string `help:"Account email." short:"e"`
	Name     string `help:"Display name." short:"n"`
	Password string `help:"Account password. Prompted for when omitted." env:"HABITUAL_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	email, err := ctx.Ask(c.Email, "Email", false)
	if err != nil {
		return err
	}
	name, err := ctx.Ask(c.Name, "Name", false)
	if err != nil {
		return err
	}
	password, err := ctx.Ask(c.Password, "Password", true)
	if err != nil {
		return err
	}
	if res := validation.Credentials(email, password); res.HasIssues() {
		return res.Err()
	}

	user, err := ctx.Session.SignUp(ctx.Context(), email, password, name)
	if err != nil {
		return cli.Notified(err)
	}
	ctx.Printf("Registered and signed in as %s\n", displayName(user))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	// resume first so the backend session is invalidated too
	if _, err := ctx.RequireSession(); err != nil && !errors.Is(err, store.ErrNoSession) {
		logger.Debug("Could not resume session before logout", "error", err)
	}
	return ctx.Session.SignOut(ctx.Context())
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	user, err := ctx.RequireSession()
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 0 {
			if cached, ok := ctx.Session.CachedUser(); ok {
				ctx.Printf("%s (offline, last signed in)\n", displayName(cached))
				return nil
			}
		}
		return err
	}
	ctx.Printf("%s\n", displayName(user))
	ctx.Printf("  ID: %s\n", user.ID)
	return nil
}

type ProfileCmd struct {
	Show   ProfileShowCmd   `cmd:"" help:"Show your profile." default:"1"`
	Update ProfileUpdateCmd `cmd:"" help:"Update your name or email."`
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	user, err := ctx.Client.Profile(ctx.Context())
	if err != nil {
		return err
	}
	printProfile(ctx, user)
	return nil
}

type ProfileUpdateCmd struct {
	Name  *string `help:"New display name."`
	Email *string `help:"New email address."`
}

func (c *ProfileUpdateCmd) Run(ctx *cli.Context) error {
	if c.Name == nil && c.Email == nil {
		ctx.Println("No changes specified. Use --name or --email.")
		return nil
	}
	if c.Email != nil {
		if res := validation.Email(*c.Email); res.HasIssues() {
			return res.Err()
		}
	}
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	user, err := ctx.Client.UpdateProfile(ctx.Context(), models.ProfileUpdate{Name: c.Name, Email: c.Email})
	if err != nil {
		return err
	}
	notifier.Success(ctx.Notifier, constants.MsgProfileUpdated)
	printProfile(ctx, user)
	return nil
}

func printProfile(ctx *cli.Context, user models.User) {
	ctx.Println("Profile:")
	ctx.Printf("  Name:  %s\n", user.Name)
	ctx.Printf("  Email: %s\n", user.Email)
	ctx.Printf("  ID:    %s\n", user.ID)
}

func displayName(user models.User) string {
	if user.Name == "" {
		return user.Email
	}
	return fmt.Sprintf("%s <%s>", user.Name, user.Email)
}
