package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/account"
	"github.com/julianstephens/habitual/internal/cli/backups"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/progress"
	"github.com/julianstephens/habitual/internal/cli/settings"
	"github.com/julianstephens/habitual/internal/cli/share"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/postgres"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite file path or PostgreSQL connection string for local state. Credentials must NOT be embedded in a connection string; use environment variables or .pgpass instead." env:"HABITUAL_CONFIG" default:"${config}"`
	APIURL  string `name:"api-url" help:"Base URL of the habit backend (overrides the saved api_url setting)." env:"HABITUAL_API_URL"`
	Debug   bool   `help:"Write debug logs to stderr as well as the log file." env:"HABITUAL_DEBUG"`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitual storage."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Login    account.LoginCmd     `cmd:"" help:"Sign in to the habit backend."`
	Register account.RegisterCmd  `cmd:"" help:"Create an account and sign in."`
	Logout   account.LogoutCmd    `cmd:"" help:"Sign out and forget the saved session."`
	Whoami   account.WhoamiCmd    `cmd:"" help:"Show the signed-in user."`
	Profile  account.ProfileCmd   `cmd:"" help:"Show or update your profile."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits."`
	Today    habits.TodayCmd      `cmd:"" help:"Show today's checklist."`
	Toggle   habits.ToggleCmd     `cmd:"" help:"Mark a habit done (or undone) for a day."`
	Progress progress.ProgressCmd `cmd:"" help:"Browse progress history and stats."`
	Share    share.ShareCmd       `cmd:"" help:"Manage public share links."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage local settings."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage local database backups."`
}

func main() {
	// .env values must be in the environment before flags are parsed
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track daily habits against a habit backend."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"config":  constants.DefaultConfigPath,
		},
	)

	local, err := cli.NewStorage(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	command := ctx.Selected().Name
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir(local),
		Quiet:     command == "tui",
	}); err != nil {
		apperrors.Fatal(err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if command == "init" {
		err := ctx.Run(cli.NewLocal(local, os.Stdout))
		closeErr := local.Close()
		apperrors.Fatal(errors.Join(err, closeErr))
		return
	}

	if err := local.Load(); err != nil {
		if !errors.Is(err, storage.ErrNotInitialized) {
			apperrors.Fatal(err)
		}
		logger.Info("Initializing local storage", "path", local.GetConfigPath())
		if err := local.Init(); err != nil {
			apperrors.Fatal(err)
		}
	}

	appCtx, err := cli.Open(local, cli.Options{
		APIURL:      CLI.APIURL,
		Credentials: keyring.Credentials{},
		Context:     runCtx,
	})
	if err != nil {
		_ = local.Close()
		apperrors.Fatal(err)
	}

	err = ctx.Run(appCtx)
	closeErr := appCtx.Close()
	stop()
	apperrors.Fatal(errors.Join(cli.Notified(err), closeErr))
}

// configDir is where logs are written: next to the SQLite file, or the user
// config directory for PostgreSQL.
func configDir(local storage.Provider) string {
	path := local.GetConfigPath()
	if !postgres.IsConnString(path) {
		return filepath.Dir(path)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, constants.AppName)
}
