package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/apitest"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/store"
)

type fixture struct {
	backend  *apitest.Backend
	client   *api.Client
	local    *sqlite.Store
	creds    keyring.Credentials
	recorder *notifier.Recorder
	provider *Provider
}

func setup(t *testing.T, guard time.Duration) *fixture {
	t.Helper()
	gokeyring.MockInit()

	b := apitest.New(t)
	b.AddUser("ana@example.com", "secret", "Ana")

	client, err := api.New(b.URL())
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	local := sqlite.NewStore(filepath.Join(t.TempDir(), "habitual.db"))
	if err := local.Init(); err != nil {
		t.Fatalf("storage init failed: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	f := &fixture{
		backend:  b,
		client:   client,
		local:    local,
		creds:    keyring.Credentials{Service: "habitual-test", User: t.Name()},
		recorder: &notifier.Recorder{},
	}
	f.provider = New(Config{
		Client:       client,
		Local:        local,
		Credentials:  f.creds,
		Notifier:     f.recorder,
		GuardTimeout: guard,
	})
	return f
}

func lastText(r *notifier.Recorder) string {
	msgs := r.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

func TestSignInPersistsSession(t *testing.T) {
	f := setup(t, 0)

	var seen []bool
	f.provider.Subscribe(func(_ models.User, signedIn bool) { seen = append(seen, signedIn) })

	user, err := f.provider.SignIn(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if user.Name != "Ana" {
		t.Errorf("user = %+v", user)
	}
	if got, ok := f.provider.User(); !ok || got.Email != "ana@example.com" {
		t.Errorf("User() = %+v, %v", got, ok)
	}
	if lastText(f.recorder) != constants.MsgSignedIn {
		t.Errorf("notification = %q, want %q", lastText(f.recorder), constants.MsgSignedIn)
	}
	if len(seen) != 1 || !seen[0] {
		t.Errorf("subscriber saw %v, want [true]", seen)
	}

	if _, err := f.creds.Get(); err != nil {
		t.Errorf("cookies not saved to keyring: %v", err)
	}
	if cached, ok := f.provider.CachedUser(); !ok || cached.Email != "ana@example.com" {
		t.Errorf("CachedUser() = %+v, %v", cached, ok)
	}
}

func TestSignInFailureSurfacesServerMessage(t *testing.T) {
	f := setup(t, 0)

	_, err := f.provider.SignIn(context.Background(), "ana@example.com", "wrong")
	if !api.IsUnauthorized(err) {
		t.Fatalf("SignIn error = %v, want 401", err)
	}
	if _, ok := f.provider.User(); ok {
		t.Error("signed in after failed login")
	}
	if got := f.recorder.Errors(); len(got) != 1 || got[0] != "Invalid email or password" {
		t.Errorf("errors = %v", got)
	}
}

func TestSignUpFallsBackToGenericMessage(t *testing.T) {
	f := setup(t, 0)
	f.backend.Fail("POST /api/auth/register", http.StatusInternalServerError, "")

	if _, err := f.provider.SignUp(context.Background(), "bo@example.com", "pw", "Bo"); err == nil {
		t.Fatal("expected SignUp to fail")
	}
	if got := f.recorder.Errors(); len(got) != 1 || got[0] != constants.MsgSignUpFailed {
		t.Errorf("errors = %v, want [%q]", got, constants.MsgSignUpFailed)
	}
}

func TestRestoreResumesSavedSession(t *testing.T) {
	f := setup(t, 0)
	if _, err := f.provider.SignIn(context.Background(), "ana@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	// A fresh process: new client, same keyring entry.
	client, err := api.New(f.backend.URL())
	if err != nil {
		t.Fatal(err)
	}
	restored := New(Config{Client: client, Local: f.local, Credentials: f.creds})
	if err := restored.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if user, ok := restored.User(); !ok || user.Email != "ana@example.com" {
		t.Errorf("User() after restore = %+v, %v", user, ok)
	}
}

func TestRestoreDropsRejectedCookies(t *testing.T) {
	f := setup(t, 0)
	secret, err := api.EncodeCookies([]api.Cookie{{Name: constants.SessionCookieName, Value: "forged"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.creds.Set(secret); err != nil {
		t.Fatal(err)
	}

	if err := f.provider.Restore(context.Background()); err != nil {
		t.Fatalf("Restore error = %v, want nil for expired session", err)
	}
	if _, ok := f.provider.User(); ok {
		t.Error("signed in with a forged cookie")
	}
	if _, err := f.creds.Get(); !errors.Is(err, keyring.ErrNotFound) {
		t.Errorf("stale credentials kept: %v", err)
	}
}

func TestRestoreWithoutSavedSession(t *testing.T) {
	f := setup(t, 0)
	if err := f.provider.Restore(context.Background()); err != nil {
		t.Fatalf("Restore error = %v", err)
	}
	if f.backend.Calls("GET /api/auth/me") != 0 {
		t.Error("Restore called the backend with nothing saved")
	}
}

func TestSignOutClearsEverythingEvenWhenRemoteFails(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	if _, err := f.provider.SignIn(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if err := f.local.Put(constants.KeyCachedHabits, "[]"); err != nil {
		t.Fatal(err)
	}
	f.backend.Fail("POST /api/auth/logout", http.StatusInternalServerError, "backend down")

	if err := f.provider.SignOut(ctx); err != nil {
		t.Fatalf("SignOut error = %v, want nil", err)
	}

	if _, ok := f.provider.User(); ok {
		t.Error("still signed in")
	}
	if len(f.client.SessionCookies()) != 0 {
		t.Error("cookies survived sign-out")
	}
	if _, err := f.creds.Get(); !errors.Is(err, keyring.ErrNotFound) {
		t.Errorf("keyring entry survived sign-out: %v", err)
	}
	for _, key := range []string{constants.KeySessionUser, constants.KeyCachedHabits} {
		if _, err := f.local.Get(key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%s survived sign-out: %v", key, err)
		}
	}
	if lastText(f.recorder) != constants.MsgSignedOut {
		t.Errorf("notification = %q, want %q", lastText(f.recorder), constants.MsgSignedOut)
	}
}

func TestConcurrentSignOutIssuesOneRemoteCall(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	if _, err := f.provider.SignIn(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	gate := make(chan struct{})
	f.backend.LogoutGate = gate
	f.backend.LogoutEntered = make(chan struct{}, 8)
	var closeOnce sync.Once
	release := func() { closeOnce.Do(func() { close(gate) }) }
	t.Cleanup(release)

	const callers = 4
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.provider.SignOut(ctx)
		}()
	}

	<-f.backend.LogoutEntered
	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("SignOut error = %v", err)
		}
	}
	if got := f.backend.Calls("POST /api/auth/logout"); got != 1 {
		t.Errorf("logout calls = %d, want 1", got)
	}
	if _, ok := f.provider.User(); ok {
		t.Error("still signed in")
	}

	// The guard resets once the flight has finished.
	if err := f.provider.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.backend.Calls("POST /api/auth/logout"); got != 2 {
		t.Errorf("logout calls after second sign-out = %d, want 2", got)
	}
}

func TestSignOutGuardTimeout(t *testing.T) {
	f := setup(t, 50*time.Millisecond)
	ctx := context.Background()
	if _, err := f.provider.SignIn(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	gate := make(chan struct{})
	f.backend.LogoutGate = gate
	t.Cleanup(func() { close(gate) })

	done := make(chan error, 1)
	go func() { done <- f.provider.SignOut(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SignOut error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SignOut did not honour the guard timeout")
	}
	if _, ok := f.provider.User(); ok {
		t.Error("still signed in after timed-out sign-out")
	}
}

func TestSignOutWinsOverInFlightRestore(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	if _, err := f.provider.SignIn(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	client, err := api.New(f.backend.URL())
	if err != nil {
		t.Fatal(err)
	}
	restored := New(Config{Client: client, Local: f.local, Credentials: f.creds})

	gate := make(chan struct{})
	f.backend.MeGate = gate
	f.backend.MeEntered = make(chan struct{}, 1)
	var closeOnce sync.Once
	release := func() { closeOnce.Do(func() { close(gate) }) }
	t.Cleanup(release)

	done := make(chan error, 1)
	go func() { done <- restored.Restore(ctx) }()
	<-f.backend.MeEntered

	if err := restored.SignOut(ctx); err != nil {
		t.Fatalf("SignOut error = %v", err)
	}
	release()
	if err := <-done; err != nil {
		t.Fatalf("Restore error = %v", err)
	}

	if user, ok := restored.User(); ok {
		t.Errorf("late restore signed %s back in", user.Email)
	}
	if _, err := f.local.Get(constants.KeySessionUser); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cached user written back after sign-out: %v", err)
	}
	if len(client.SessionCookies()) != 0 {
		t.Error("cookies survived sign-out")
	}
}

// clearHook runs after each time the wrapped store is cleared.
type clearHook struct {
	*sqlite.Store
	after func()
}

func (c clearHook) Clear() error {
	err := c.Store.Clear()
	if c.after != nil {
		c.after()
	}
	return err
}

func TestSignOutLeavesNoCachedHabits(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	f.backend.SeedHabit("ana@example.com", models.Habit{Name: "Water"})

	gate := make(chan struct{})
	var closeOnce sync.Once
	release := func() { closeOnce.Do(func() { close(gate) }) }
	t.Cleanup(release)

	// The habit load is held until local state has been cleared, then allowed
	// to land while sign-out is still in progress.
	var habits *store.Store
	local := clearHook{Store: f.local, after: func() {
		release()
		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = habits.Wait(waitCtx)
	}}
	provider := New(Config{Client: f.client, Local: local, Credentials: f.creds, Notifier: f.recorder})
	if _, err := provider.SignIn(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	f.backend.HabitsGate = gate
	f.backend.HabitsEntered = make(chan struct{}, 4)
	habits = store.New(store.Config{
		API:      f.client,
		Session:  provider,
		Notifier: &notifier.Recorder{},
		Local:    local,
	})
	t.Cleanup(habits.Close)
	<-f.backend.HabitsEntered

	if err := provider.SignOut(ctx); err != nil {
		t.Fatalf("SignOut error = %v", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := habits.Wait(waitCtx); err != nil {
		t.Fatalf("store did not settle: %v", err)
	}

	for _, key := range []string{constants.KeyCachedHabits, constants.KeyCachedToday, constants.KeySessionUser} {
		if _, err := f.local.Get(key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%s survived sign-out: %v", key, err)
		}
	}
	if snap := habits.Snapshot(); len(snap.Habits) != 0 || snap.Status != store.StatusIdle {
		t.Errorf("snapshot after sign-out = %+v", snap)
	}
}
