// Package apitest provides an in-memory habit backend for tests. It speaks the
// same REST surface as the real service and issues real session cookies.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

type account struct {
	user     models.User
	password string
}

type failure struct {
	status  int
	message string
}

// Backend is a fake habit service. The zero value is not usable; call New.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	cookies  *sessions.CookieStore
	accounts map[string]*account // by email
	habits   map[models.ID]*models.Habit
	owners   map[models.ID]models.ID // habit -> user
	records  map[models.ID]*models.ProgressRecord
	links    map[models.ID]*models.ShareLink
	nextID   int
	calls    map[string]int
	failures map[string][]failure

	// Today returns the server's notion of the current day.
	Today func() string
	// LogoutGate, when set, blocks the logout handler until it is closed.
	LogoutGate chan struct{}
	// LogoutEntered receives a value each time the logout handler starts.
	LogoutEntered chan struct{}
	// HabitsGate, when set, blocks GET /habits until it yields or is closed.
	HabitsGate chan struct{}
	// HabitsEntered receives a value each time GET /habits starts.
	HabitsEntered chan struct{}
	// MeGate, when set, blocks GET /auth/me until it yields or is closed.
	MeGate chan struct{}
	// MeEntered receives a value each time GET /auth/me starts.
	MeEntered chan struct{}
}

// New starts a fake backend. The server is closed when the test ends.
func New(t interface {
	Helper()
	Cleanup(func())
}) *Backend {
	t.Helper()
	b := &Backend{
		cookies:  sessions.NewCookieStore([]byte("habitual-test-session-key-0123456789")),
		accounts: make(map[string]*account),
		habits:   make(map[models.ID]*models.Habit),
		owners:   make(map[models.ID]models.ID),
		records:  make(map[models.ID]*models.ProgressRecord),
		links:    make(map[models.ID]*models.ShareLink),
		calls:    make(map[string]int),
		failures: make(map[string][]failure),
		Today:    func() string { return time.Now().Format(constants.DateFormat) },
	}
	b.cookies.Options = &sessions.Options{Path: "/", HttpOnly: true, MaxAge: 3600}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the API base URL of the fake backend.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", b.handleRegister)
		r.Post("/auth/login", b.handleLogin)
		r.Post("/auth/logout", b.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(b.requireUser)
			r.Get("/auth/me", b.handleMe)
			r.Get("/users/profile", b.handleProfile)
			r.Put("/users/profile", b.handleUpdateProfile)

			r.Get("/habits", b.handleListHabits)
			r.Post("/habits", b.handleCreateHabit)
			r.Get("/habits/categories", b.handleCategories)
			r.Put("/habits/{id}", b.handleUpdateHabit)
			r.Delete("/habits/{id}", b.handleDeleteHabit)

			r.Get("/progress", b.handleListProgress)
			r.Get("/progress/today", b.handleToday)
			r.Post("/progress/toggle", b.handleToggle)
			r.Get("/progress/stats", b.handleStats)
			r.Get("/progress/calendar/{year}/{month}", b.handleCalendar)
			r.Delete("/progress/{id}", b.handleDeleteProgress)

			r.Get("/share/stats", b.handleShareStats)
			r.Post("/share/create", b.handleCreateShare)
			r.Get("/share/user/links", b.handleShareLinks)
			r.Delete("/share/{id}", b.handleDeleteShare)
		})
		r.Get("/share/{id}", b.handleShared)
	})
	return r
}

// record counts calls per "METHOD /path" and serves queued failures.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.calls[key]++
		var f *failure
		if queued := b.failures[key]; len(queued) > 0 {
			f = &queued[0]
			b.failures[key] = queued[1:]
		}
		b.mu.Unlock()

		if f != nil {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes the next request to "METHOD /api/path" answer with status and
// message. An empty message yields an empty body.
func (b *Backend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = append(b.failures[route], failure{status: status, message: message})
}

// Calls returns how many requests hit "METHOD /api/path".
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// AddUser registers an account directly.
func (b *Backend) AddUser(email, password, name string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, password, name)
}

func (b *Backend) addUserLocked(email, password, name string) models.User {
	u := models.User{ID: b.newIDLocked(), Email: email, Name: name}
	b.accounts[email] = &account{user: u, password: password}
	return u
}

// SeedHabit inserts a habit owned by the user with email.
func (b *Backend) SeedHabit(email string, h models.Habit) models.Habit {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[email]
	if acct == nil {
		panic("apitest: unknown user " + email)
	}
	if h.ID.IsZero() {
		h.ID = b.newIDLocked()
	}
	h.IsActive = true
	b.habits[h.ID] = &h
	b.owners[h.ID] = acct.user.ID
	return h
}

// SetStreak overrides the streak numbers of a habit.
func (b *Backend) SetStreak(id models.ID, current, longest int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h := b.habits[id]; h != nil {
		h.CurrentStreak = current
		h.LongestStreak = longest
	}
}

// Record returns the progress record for (habitID, date), if any.
func (b *Backend) Record(habitID models.ID, date string) (models.ProgressRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.records {
		if rec.HabitID == habitID && rec.Date == date {
			return *rec, true
		}
	}
	return models.ProgressRecord{}, false
}

func (b *Backend) newIDLocked() models.ID {
	b.nextID++
	return models.ID(strconv.Itoa(b.nextID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"message": fmt.Sprintf(format, args...)})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func sortHabits(habits []models.Habit) {
	sort.Slice(habits, func(i, j int) bool {
		a, _ := strconv.Atoi(habits[i].ID.String())
		b, _ := strconv.Atoi(habits[j].ID.String())
		return a < b
	})
}
