// Package session tracks who is signed in to the habit backend and keeps the
// session cookie alive across process restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notifier"
	"github.com/julianstephens/habitual/internal/storage"
)

// CredentialStore persists the exported cookie set. keyring.Credentials
// satisfies it.
type CredentialStore interface {
	Get() (string, error)
	Set(secret string) error
	Delete() error
}

type Config struct {
	Client      *api.Client
	Local       storage.Provider // optional
	Credentials CredentialStore  // optional
	Notifier    notifier.Notifier
	// GuardTimeout bounds the remote sign-out call.
	GuardTimeout time.Duration
}

// Provider holds the current user and notifies subscribers on every change.
type Provider struct {
	client *api.Client
	local  storage.Provider
	creds  CredentialStore
	notify notifier.Notifier
	guard  time.Duration

	mu       sync.Mutex
	user     models.User
	signedIn bool
	subs     map[int]func(models.User, bool)
	nextSub  int

	flight singleflight.Group

	// changeMu orders a restore's result against sign-outs; gen counts
	// sign-outs.
	changeMu sync.Mutex
	gen      uint64
}

func New(cfg Config) *Provider {
	guard := cfg.GuardTimeout
	if guard <= 0 {
		guard = constants.SignOutGuardTimeout
	}
	return &Provider{
		client: cfg.Client,
		local:  cfg.Local,
		creds:  cfg.Credentials,
		notify: cfg.Notifier,
		guard:  guard,
		subs:   make(map[int]func(models.User, bool)),
	}
}

// User returns the signed-in user, if any.
func (p *Provider) User() (models.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, p.signedIn
}

// Subscribe registers fn for session changes. fn runs synchronously on the
// goroutine that changed the session and must not block.
func (p *Provider) Subscribe(fn func(models.User, bool)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) set(user models.User, signedIn bool) {
	p.mu.Lock()
	changed := p.signedIn != signedIn || p.user != user
	p.user = user
	p.signedIn = signedIn
	subs := make([]func(models.User, bool), 0, len(p.subs))
	for i := 0; i < p.nextSub; i++ {
		if fn, ok := p.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	p.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(user, signedIn)
	}
}

// Restore resumes a session saved by a previous process. A missing or
// rejected cookie leaves the provider signed out without error. A sign-out
// that happens while the backend is being asked wins over the restore.
func (p *Provider) Restore(ctx context.Context) error {
	if p.creds == nil {
		return nil
	}
	p.changeMu.Lock()
	gen := p.gen
	p.changeMu.Unlock()

	secret, err := p.creds.Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read saved session: %w", err)
	}
	cookies, err := api.DecodeCookies(secret)
	if err != nil {
		logger.Warn("Discarding unreadable saved session", "error", err)
		p.forget()
		return nil
	}
	p.client.SetSessionCookies(cookies)

	user, err := p.client.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			logger.Info("Saved session expired")
			p.forget()
			return nil
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	p.changeMu.Lock()
	defer p.changeMu.Unlock()
	if p.gen != gen {
		logger.Debug("Discarding session restored across a sign-out")
		p.client.ClearCookies()
		return nil
	}
	p.cacheUser(user)
	p.set(user, true)
	return nil
}

// SignIn authenticates and persists the resulting session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (models.User, error) {
	user, err := p.client.SignIn(ctx, email, password)
	if err != nil {
		notifier.Error(p.notify, api.Message(err, constants.MsgSignInFailed))
		return models.User{}, err
	}
	p.establish(user)
	notifier.Success(p.notify, constants.MsgSignedIn)
	return user, nil
}

// SignUp registers a new account and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (models.User, error) {
	user, err := p.client.SignUp(ctx, email, password, name)
	if err != nil {
		notifier.Error(p.notify, api.Message(err, constants.MsgSignUpFailed))
		return models.User{}, err
	}
	p.establish(user)
	notifier.Success(p.notify, constants.MsgSignedUp)
	return user, nil
}

func (p *Provider) establish(user models.User) {
	if p.creds != nil {
		secret, err := api.EncodeCookies(p.client.SessionCookies())
		if err == nil {
			err = p.creds.Set(secret)
		}
		if err != nil {
			logger.Warn("Session will not survive restart", "error", err)
		}
	}
	p.changeMu.Lock()
	defer p.changeMu.Unlock()
	p.cacheUser(user)
	p.set(user, true)
}

func (p *Provider) cacheUser(user models.User) {
	if p.local == nil {
		return
	}
	if err := storage.SaveJSON(p.local, constants.KeySessionUser, user); err != nil {
		logger.Warn("Failed to cache session user", "error", err)
	}
}

// CachedUser returns the user saved by the last successful sign-in, for
// offline display.
func (p *Provider) CachedUser() (models.User, bool) {
	if p.local == nil {
		return models.User{}, false
	}
	var user models.User
	found, err := storage.LoadJSON(p.local, constants.KeySessionUser, &user)
	if err != nil {
		logger.Warn("Failed to read cached session user", "error", err)
		return models.User{}, false
	}
	return user, found
}

// SignOut always ends signed out. Concurrent callers share one in-flight
// sign-out; the remote call is bounded by the guard timeout and its failure
// is only logged.
func (p *Provider) SignOut(ctx context.Context) error {
	ch := p.flight.DoChan("signout", func() (any, error) {
		p.signOut()
		return nil, nil
	})
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) signOut() {
	ctx, cancel := context.WithTimeout(context.Background(), p.guard)
	defer cancel()

	if err := p.client.SignOut(ctx); err != nil {
		logger.Warn("Remote sign-out failed; clearing local session anyway", "error", err)
	}

	// Subscribers drop the session before local state is cleared, so nothing
	// they still have in flight can write it back.
	p.changeMu.Lock()
	p.gen++
	p.set(models.User{}, false)
	p.forget()
	p.changeMu.Unlock()
	notifier.Success(p.notify, constants.MsgSignedOut)
}

// forget drops every trace of the session held on this machine.
func (p *Provider) forget() {
	p.client.ClearCookies()
	if p.creds != nil {
		if err := p.creds.Delete(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to remove saved session", "error", err)
		}
	}
	if p.local != nil {
		if err := p.local.Clear(); err != nil {
			logger.Warn("Failed to clear local state", "error", err)
		}
	}
}
