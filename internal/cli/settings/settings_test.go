package settings

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	out := &bytes.Buffer{}
	ctx, err := cli.Open(store, cli.Options{Out: out, Notifier: &notifier.Recorder{}})
	if err != nil {
		t.Fatalf("failed to open context: %v", err)
	}

	cleanup := func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, out, cleanup
}

func TestSettingsCmd_List(t *testing.T) {
	ctx, out, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &SettingsCmd{
		List: true,
	}

	err := cmd.Run(ctx)
	if err != nil {
		t.Errorf("settings list failed: %v", err)
	}
	if !strings.Contains(out.String(), constants.DefaultAPIURL) {
		t.Errorf("output = %q", out.String())
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, out, cleanup := setupTestDB(t)
	defer cleanup()

	url := "https://habits.example.com/api/"
	category := "Mind"
	days := 14
	cmd := &SettingsCmd{
		APIURL:          &url,
		DefaultCategory: &category,
		StatsDays:       &days,
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}
	if !strings.Contains(out.String(), "Settings updated successfully.") {
		t.Errorf("output = %q", out.String())
	}

	settings, err := ctx.Local.GetSettings()
	if err != nil {
		t.Fatalf("failed to get updated settings: %v", err)
	}
	if settings.APIURL != "https://habits.example.com/api" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", settings.APIURL)
	}
	if settings.DefaultCategory != "Mind" || settings.StatsDays != 14 {
		t.Errorf("settings = %+v", settings)
	}
	if settings.DefaultEmoji != constants.DefaultEmoji {
		t.Errorf("untouched field changed: %+v", settings)
	}
}

func TestSettingsCmd_RejectsInvalidValues(t *testing.T) {
	ctx, _, cleanup := setupTestDB(t)
	defer cleanup()

	color := "blue"
	if err := (&SettingsCmd{DefaultColor: &color}).Run(ctx); err == nil {
		t.Error("expected invalid color to fail")
	}
	days := 0
	if err := (&SettingsCmd{StatsDays: &days}).Run(ctx); err == nil {
		t.Error("expected zero stats days to fail")
	}
	url := "ftp://example.com"
	if err := (&SettingsCmd{APIURL: &url}).Run(ctx); err == nil {
		t.Error("expected non-http URL to fail")
	}

	settings, err := ctx.Local.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.DefaultColor != constants.DefaultColor {
		t.Errorf("invalid update was saved: %+v", settings)
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, out, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("output = %q", out.String())
	}
}
