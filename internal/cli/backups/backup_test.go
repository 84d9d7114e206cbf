package backups

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, string, *bytes.Buffer, func()) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	out := &bytes.Buffer{}
	ctx := cli.NewLocal(store, out)
	ctx.Confirm = func(string) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}

	cleanup := func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}
	return ctx, dbPath, out, cleanup
}

func setStatsDays(t *testing.T, ctx *cli.Context, days int) {
	t.Helper()
	settings, err := ctx.Local.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	settings.StatsDays = days
	if err := ctx.Local.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, _, out, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: habitual-") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Available backups (1 total") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackupList_Empty(t *testing.T) {
	ctx, _, out, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackupRestore_Newest(t *testing.T) {
	ctx, dbPath, out, cleanup := setupTestDB(t)
	defer cleanup()

	setStatsDays(t, ctx, 7)
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	setStatsDays(t, ctx, 90)

	if err := (&BackupRestoreCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Restored from:") {
		t.Errorf("output = %q", out.String())
	}

	reopened := sqlite.NewStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatalf("failed to load restored database: %v", err)
	}
	defer reopened.Close()
	settings, err := reopened.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.StatsDays != 7 {
		t.Errorf("StatsDays = %d, want the backed up value 7", settings.StatsDays)
	}
}

func TestBackupRestore_Cancelled(t *testing.T) {
	ctx, _, out, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	ctx.Confirm = func(string) (bool, error) { return false, nil }

	if err := (&BackupRestoreCmd{}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("output = %q", out.String())
	}
	if _, err := ctx.Local.GetSettings(); err != nil {
		t.Errorf("database should stay open after a cancelled restore: %v", err)
	}
}

func TestBackupRestore_MissingFile(t *testing.T) {
	ctx, _, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := (&BackupRestoreCmd{BackupFile: "nope.db", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "backup file not found") {
		t.Errorf("err = %v", err)
	}
}

func TestBackupRejectsPostgres(t *testing.T) {
	ctx := cli.NewLocal(postgres.New("postgres://localhost:5432/habitual?sslmode=disable"), &bytes.Buffer{})
	if err := (&BackupCreateCmd{}).Run(ctx); err != errNotSQLite {
		t.Errorf("err = %v, want %v", err, errNotSQLite)
	}
}
