package share

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitual/internal/apitest"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/store"
)

const email = "ana@example.com"

func openContext(t *testing.T, b *apitest.Backend, signIn bool) (*cli.Context, *bytes.Buffer, *notifier.Recorder) {
	t.Helper()
	local := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := local.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	out, notes := &bytes.Buffer{}, &notifier.Recorder{}
	ctx, err := cli.Open(local, cli.Options{APIURL: b.URL(), Notifier: notes, Out: out})
	if err != nil {
		t.Fatalf("failed to open context: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	if signIn {
		if _, err := ctx.Session.SignIn(ctx.Context(), email, "secret"); err != nil {
			t.Fatalf("sign in failed: %v", err)
		}
	}
	return ctx, out, notes
}

func setupTestDB(t *testing.T) (*cli.Context, *apitest.Backend, *bytes.Buffer, *notifier.Recorder) {
	t.Helper()
	b := apitest.New(t)
	b.AddUser(email, "secret", "Ana")
	h := b.SeedHabit(email, models.Habit{Name: "Water", Emoji: "💧"})
	b.SetStreak(h.ID, 3, 8)
	ctx, out, notes := openContext(t, b, true)
	return ctx, b, out, notes
}

func TestShareStatsCmd(t *testing.T) {
	ctx, _, out, _ := setupTestDB(t)
	if err := (&ShareStatsCmd{}).Run(ctx); err != nil {
		t.Fatalf("share stats failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Longest streak:    8") || !strings.Contains(got, "💧 Water") {
		t.Errorf("stats = %q", got)
	}
}

func TestShareLinkLifecycle(t *testing.T) {
	ctx, b, out, notes := setupTestDB(t)

	if err := (&ShareCreateCmd{Title: "My streaks", NoHabits: true}).Run(ctx); err != nil {
		t.Fatalf("share create failed: %v", err)
	}
	if msgs := notes.Messages(); msgs[len(msgs)-1].Text != constants.MsgShareLinkCreated {
		t.Errorf("notifications = %+v", msgs)
	}
	links, err := ctx.Client.ShareLinks(ctx.Context())
	if err != nil || len(links) != 1 {
		t.Fatalf("links = %+v, %v", links, err)
	}
	link := links[0]
	if !strings.Contains(out.String(), link.URL) {
		t.Errorf("create output = %q", out.String())
	}
	if !link.IncludeStats || link.IncludeHabits {
		t.Errorf("flags not honored: %+v", link)
	}

	out.Reset()
	if err := (&ShareListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "My streaks") || !strings.Contains(out.String(), "[stats]") {
		t.Errorf("list = %q", out.String())
	}

	public, publicOut, _ := openContext(t, b, false)
	if err := (&ShareViewCmd{ID: link.ID.String()}).Run(public); err != nil {
		t.Fatalf("share view failed: %v", err)
	}
	view := publicOut.String()
	if !strings.Contains(view, "My streaks") || !strings.Contains(view, "by Ana") {
		t.Errorf("view = %q", view)
	}
	if strings.Contains(view, "Water") {
		t.Errorf("habits were excluded but shown: %q", view)
	}

	if err := (&ShareDeleteCmd{ID: link.ID.String()}).Run(ctx); err != nil {
		t.Fatalf("share delete failed: %v", err)
	}
	if msgs := notes.Messages(); msgs[len(msgs)-1].Text != constants.MsgShareLinkDeleted {
		t.Errorf("notifications = %+v", msgs)
	}
	if err := (&ShareViewCmd{ID: link.ID.String()}).Run(public); err == nil {
		t.Error("expected deleted link to be gone")
	}
}

func TestShareCreateCmd_Validation(t *testing.T) {
	ctx, b, _, _ := setupTestDB(t)

	if err := (&ShareCreateCmd{Title: "  "}).Run(ctx); err == nil {
		t.Error("expected empty title to fail")
	}
	if err := (&ShareCreateCmd{Title: "x", NoStats: true, NoHabits: true}).Run(ctx); err == nil {
		t.Error("expected an empty share to fail")
	}
	if n := b.Calls("POST /api/share/create"); n != 0 {
		t.Errorf("create called %d times", n)
	}
}

func TestShareCmd_RequiresSession(t *testing.T) {
	b := apitest.New(t)
	ctx, _, _ := openContext(t, b, false)
	if err := (&ShareListCmd{}).Run(ctx); !errors.Is(err, store.ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}
