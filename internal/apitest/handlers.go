package apitest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

type ctxKey struct{}

func currentUser(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}

func (b *Backend) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := b.cookies.Get(r, constants.SessionCookieName)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		email, _ := sess.Values["email"].(string)
		b.mu.Lock()
		acct := b.accounts[email]
		b.mu.Unlock()
		if acct == nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, acct.user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *Backend) startSession(w http.ResponseWriter, r *http.Request, u models.User) error {
	sess, _ := b.cookies.Get(r, constants.SessionCookieName)
	sess.Values["email"] = u.Email
	return sess.Save(r, w)
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decode(r, &creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	b.mu.Lock()
	if _, exists := b.accounts[creds.Email]; exists {
		b.mu.Unlock()
		writeMessage(w, http.StatusConflict, "email already registered")
		return
	}
	u := b.addUserLocked(creds.Email, creds.Password, creds.Name)
	b.mu.Unlock()

	if err := b.startSession(w, r, u); err != nil {
		writeMessage(w, http.StatusInternalServerError, "session error")
		return
	}
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: u})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decode(r, &creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	b.mu.Lock()
	acct := b.accounts[creds.Email]
	b.mu.Unlock()
	if acct == nil || acct.password != creds.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := b.startSession(w, r, acct.user); err != nil {
		writeMessage(w, http.StatusInternalServerError, "session error")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{User: acct.user})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if b.LogoutEntered != nil {
		b.LogoutEntered <- struct{}{}
	}
	if b.LogoutGate != nil {
		<-b.LogoutGate
	}
	sess, _ := b.cookies.Get(r, constants.SessionCookieName)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	if b.MeEntered != nil {
		b.MeEntered <- struct{}{}
	}
	if b.MeGate != nil {
		<-b.MeGate
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{User: currentUser(r)})
}

func (b *Backend) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (b *Backend) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	u := currentUser(r)
	b.mu.Lock()
	acct := b.accounts[u.Email]
	if upd.Name != nil {
		acct.user.Name = *upd.Name
	}
	updated := acct.user
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) ownedHabit(r *http.Request, id models.ID) *models.Habit {
	h := b.habits[id]
	if h == nil || b.owners[id] != currentUser(r).ID {
		return nil
	}
	return h
}

func (b *Backend) userHabits(r *http.Request, activeOnly bool) []models.Habit {
	uid := currentUser(r).ID
	var out []models.Habit
	for id, h := range b.habits {
		if b.owners[id] != uid || (activeOnly && !h.IsActive) {
			continue
		}
		out = append(out, *h)
	}
	sortHabits(out)
	return out
}

func (b *Backend) handleListHabits(w http.ResponseWriter, r *http.Request) {
	if b.HabitsEntered != nil {
		b.HabitsEntered <- struct{}{}
	}
	if b.HabitsGate != nil {
		<-b.HabitsGate
	}
	b.mu.Lock()
	habits := b.userHabits(r, r.URL.Query().Get("active") == "true")
	b.mu.Unlock()
	if habits == nil {
		habits = []models.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

func (b *Backend) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var in models.HabitInput
	if err := decode(r, &in); err != nil || in.Name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	b.mu.Lock()
	for _, h := range b.userHabits(r, false) {
		if h.Name == in.Name {
			b.mu.Unlock()
			writeMessage(w, http.StatusConflict, "name taken")
			return
		}
	}
	now := time.Now().UTC()
	h := &models.Habit{
		ID:          b.newIDLocked(),
		Name:        in.Name,
		Description: in.Description,
		Emoji:       in.Emoji,
		Category:    in.Category,
		Color:       in.Color,
		IsActive:    true,
		CreatedAt:   &now,
	}
	b.habits[h.ID] = h
	b.owners[h.ID] = currentUser(r).ID
	created := *h
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (b *Backend) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	var upd models.HabitUpdate
	if err := decode(r, &upd); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	b.mu.Lock()
	h := b.ownedHabit(r, id)
	if h == nil {
		b.mu.Unlock()
		writeMessage(w, http.StatusNotFound, "Habit not found")
		return
	}
	if upd.Name != nil {
		h.Name = *upd.Name
	}
	if upd.Description != nil {
		h.Description = *upd.Description
	}
	if upd.Emoji != nil {
		h.Emoji = *upd.Emoji
	}
	if upd.Category != nil {
		h.Category = *upd.Category
	}
	if upd.Color != nil {
		h.Color = *upd.Color
	}
	if upd.IsActive != nil {
		h.IsActive = *upd.IsActive
	}
	updated := *h
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ownedHabit(r, id) == nil {
		writeMessage(w, http.StatusNotFound, "Habit not found")
		return
	}
	delete(b.habits, id)
	delete(b.owners, id)
	for rid, rec := range b.records {
		if rec.HabitID == id {
			delete(b.records, rid)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	seen := map[string]bool{}
	categories := []string{}
	for _, h := range b.userHabits(r, false) {
		if h.Category != "" && !seen[h.Category] {
			seen[h.Category] = true
			categories = append(categories, h.Category)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, categories)
}

func (b *Backend) userRecords(r *http.Request, habitID models.ID, from, to string) []models.ProgressRecord {
	uid := currentUser(r).ID
	out := []models.ProgressRecord{}
	for _, rec := range b.records {
		if b.owners[rec.HabitID] != uid {
			continue
		}
		if !habitID.IsZero() && rec.HabitID != habitID {
			continue
		}
		if (from != "" && rec.Date < from) || (to != "" && rec.Date > to) {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func (b *Backend) handleListProgress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b.mu.Lock()
	records := b.userRecords(r, models.ID(q.Get("habitId")), q.Get("startDate"), q.Get("endDate"))
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, records)
}

func (b *Backend) handleToday(w http.ResponseWriter, r *http.Request) {
	today := b.Today()
	b.mu.Lock()
	entries := []models.TodayEntry{}
	for _, h := range b.userHabits(r, true) {
		entry := models.TodayEntry{Habit: h}
		for _, rec := range b.records {
			if rec.HabitID == h.ID && rec.Date == today {
				entry.Completed = rec.Completed
				entry.ProgressID = rec.ID
			}
		}
		entries = append(entries, entry)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, entries)
}

func (b *Backend) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	if _, err := time.Parse(constants.DateFormat, req.Date); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid date")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.ownedHabit(r, req.HabitID)
	if h == nil {
		writeMessage(w, http.StatusNotFound, "Habit not found")
		return
	}
	var rec *models.ProgressRecord
	for _, existing := range b.records {
		if existing.HabitID == req.HabitID && existing.Date == req.Date {
			rec = existing
		}
	}
	if rec == nil {
		rec = &models.ProgressRecord{ID: b.newIDLocked(), HabitID: req.HabitID, Date: req.Date}
		b.records[rec.ID] = rec
	}
	rec.Completed = !rec.Completed
	b.recomputeStreakLocked(h)
	writeJSON(w, http.StatusOK, models.ToggleResult{Completed: rec.Completed})
}

// recomputeStreakLocked counts consecutive completed days ending today, or
// yesterday when today is still open.
func (b *Backend) recomputeStreakLocked(h *models.Habit) {
	done := map[string]bool{}
	for _, rec := range b.records {
		if rec.HabitID == h.ID && rec.Completed {
			done[rec.Date] = true
		}
	}
	day, err := time.Parse(constants.DateFormat, b.Today())
	if err != nil {
		return
	}
	if !done[day.Format(constants.DateFormat)] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for done[day.Format(constants.DateFormat)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	h.CurrentStreak = streak
	if streak > h.LongestStreak {
		h.LongestStreak = streak
	}
}

func (b *Backend) handleStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}
	today, _ := time.Parse(constants.DateFormat, b.Today())
	from := today.AddDate(0, 0, -(days - 1)).Format(constants.DateFormat)
	b.mu.Lock()
	records := b.userRecords(r, models.ID(r.URL.Query().Get("habitId")), from, today.Format(constants.DateFormat))
	b.mu.Unlock()

	completed := map[string]bool{}
	for _, rec := range records {
		if rec.Completed {
			completed[rec.Date] = true
		}
	}
	stats := models.ProgressStats{
		CompletedDays: len(completed),
		TotalDays:     days,
		MissedDays:    days - len(completed),
	}
	stats.CompletionRate = float64(int(float64(stats.CompletedDays) / float64(days) * 100))
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		writeMessage(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	b.mu.Lock()
	records := b.userRecords(r, models.ID(r.URL.Query().Get("habitId")), start.Format(constants.DateFormat), end.Format(constants.DateFormat))
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, records)
}

func (b *Backend) handleDeleteProgress(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	rec := b.records[id]
	if rec == nil || b.ownedHabit(r, rec.HabitID) == nil {
		writeMessage(w, http.StatusNotFound, "Progress not found")
		return
	}
	delete(b.records, id)
	b.recomputeStreakLocked(b.habits[rec.HabitID])
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) summaryLocked(r *http.Request) models.ShareStats {
	habits := b.userHabits(r, true)
	stats := models.SummaryStats{TotalHabits: len(habits)}
	total := 0
	for _, h := range habits {
		total += h.CurrentStreak
		if h.LongestStreak > stats.LongestStreak {
			stats.LongestStreak = h.LongestStreak
		}
	}
	for _, rec := range b.userRecords(r, "", "", "") {
		if rec.Completed {
			stats.TotalCompletions++
		}
	}
	if len(habits) > 0 {
		stats.AverageStreak = float64(total) / float64(len(habits))
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return models.ShareStats{Stats: stats, Habits: habits}
}

func (b *Backend) handleShareStats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	stats := b.summaryLocked(r)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req models.ShareRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	b.mu.Lock()
	id := models.ID(fmt.Sprintf("s%d", b.nextID+1))
	b.nextID++
	link := &models.ShareLink{
		ID:            id,
		Title:         req.Title,
		Description:   req.Description,
		IncludeStats:  req.IncludeStats,
		IncludeHabits: req.IncludeHabits,
		CreatedAt:     time.Now().UTC(),
		URL:           b.Server.URL + "/shared/" + id.String(),
	}
	b.links[id] = link
	b.owners[id] = currentUser(r).ID
	created := *link
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (b *Backend) handleShareLinks(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r).ID
	b.mu.Lock()
	links := []models.ShareLink{}
	for id, l := range b.links {
		if b.owners[id] == uid {
			links = append(links, *l)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, links)
}

func (b *Backend) handleDeleteShare(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.links[id] == nil || b.owners[id] != currentUser(r).ID {
		writeMessage(w, http.StatusNotFound, "Share link not found")
		return
	}
	delete(b.links, id)
	delete(b.owners, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleShared(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	link := b.links[id]
	if link == nil {
		writeMessage(w, http.StatusNotFound, "Share link not found")
		return
	}
	shared := models.SharedProgress{Title: link.Title, Description: link.Description}
	owner := b.owners[id]
	var ownerEmail string
	for email, acct := range b.accounts {
		if acct.user.ID == owner {
			shared.UserName = acct.user.Name
			ownerEmail = email
		}
	}
	ownerReq := r.WithContext(context.WithValue(r.Context(), ctxKey{}, b.accounts[ownerEmail].user))
	summary := b.summaryLocked(ownerReq)
	if link.IncludeStats {
		shared.Stats = &summary.Stats
	}
	if link.IncludeHabits {
		shared.Habits = summary.Habits
	}
	writeJSON(w, http.StatusOK, shared)
}
