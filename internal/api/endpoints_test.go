package api

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/apitest"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

func signedInClient(t *testing.T) (*Client, *apitest.Backend) {
	t.Helper()
	backend := apitest.New(t)
	backend.AddUser("sam@example.com", "secret", "Sam")

	c, err := New(backend.URL())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.SignIn(context.Background(), "sam@example.com", "secret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	return c, backend
}

func TestHabitEndpoints(t *testing.T) {
	c, _ := signedInClient(t)
	ctx := context.Background()

	created, err := c.CreateHabit(ctx, models.HabitInput{Name: "Water", Category: "Health"})
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	if created.ID.IsZero() || created.Name != "Water" {
		t.Fatalf("unexpected habit %+v", created)
	}

	name := "Drink water"
	updated, err := c.UpdateHabit(ctx, created.ID, models.HabitUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateHabit() error = %v", err)
	}
	if updated.Name != name || updated.Category != "Health" {
		t.Errorf("partial update lost fields: %+v", updated)
	}

	inactive := false
	if _, err := c.UpdateHabit(ctx, created.ID, models.HabitUpdate{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}
	active, err := c.ListHabits(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("inactive habit listed as active: %+v", active)
	}
	all, err := c.ListHabits(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("ListHabits(false) = %d habits, want 1", len(all))
	}

	categories, err := c.HabitCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 1 || categories[0] != "Health" {
		t.Errorf("HabitCategories() = %v", categories)
	}

	if err := c.DeleteHabit(ctx, created.ID); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}
	if err := c.DeleteHabit(ctx, created.ID); !IsNotFound(err) {
		t.Errorf("second DeleteHabit() error = %v, want 404", err)
	}
}

func TestProgressEndpoints(t *testing.T) {
	c, backend := signedInClient(t)
	ctx := context.Background()
	today := time.Now().Format(constants.DateFormat)
	backend.Today = func() string { return today }

	habit, err := c.CreateHabit(ctx, models.HabitInput{Name: "Read"})
	if err != nil {
		t.Fatal(err)
	}

	res, err := c.ToggleProgress(ctx, habit.ID, today)
	if err != nil {
		t.Fatalf("ToggleProgress() error = %v", err)
	}
	if !res.Completed {
		t.Error("first toggle should complete the habit")
	}

	entries, err := c.TodayProgress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !entries[0].Completed || entries[0].Habit.CurrentStreak != 1 {
		t.Errorf("TodayProgress() = %+v", entries)
	}

	records, err := c.ListProgress(ctx, ProgressQuery{StartDate: today, EndDate: today, HabitID: habit.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("ListProgress() = %+v", records)
	}

	now := time.Now()
	month, err := c.ProgressCalendar(ctx, now.Year(), int(now.Month()), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(month) != 1 {
		t.Errorf("ProgressCalendar() = %+v", month)
	}

	stats, err := c.ProgressStats(ctx, StatsQuery{Days: 10})
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalDays != 10 || stats.CompletedDays != 1 || stats.MissedDays != 9 {
		t.Errorf("ProgressStats() = %+v", stats)
	}

	if err := c.DeleteProgress(ctx, records[0].ID); err != nil {
		t.Fatalf("DeleteProgress() error = %v", err)
	}
	if _, ok := backend.Record(habit.ID, today); ok {
		t.Error("record should be gone")
	}
}

func TestShareEndpoints(t *testing.T) {
	c, _ := signedInClient(t)
	ctx := context.Background()

	if _, err := c.CreateHabit(ctx, models.HabitInput{Name: "Run"}); err != nil {
		t.Fatal(err)
	}

	preview, err := c.ShareStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if preview.Stats.TotalHabits != 1 {
		t.Errorf("ShareStats() = %+v", preview)
	}

	link, err := c.CreateShareLink(ctx, models.ShareRequest{Title: "My month", IncludeStats: true})
	if err != nil {
		t.Fatalf("CreateShareLink() error = %v", err)
	}
	if link.ID.IsZero() || link.URL == "" {
		t.Fatalf("unexpected link %+v", link)
	}

	links, err := c.ShareLinks(ctx)
	if err != nil || len(links) != 1 {
		t.Fatalf("ShareLinks() = %+v, %v", links, err)
	}

	shared, err := c.SharedProgress(ctx, link.ID)
	if err != nil {
		t.Fatalf("SharedProgress() error = %v", err)
	}
	if shared.Stats == nil || shared.Habits != nil {
		t.Errorf("shared view ignores inclusion flags: %+v", shared)
	}

	if err := c.DeleteShareLink(ctx, link.ID); err != nil {
		t.Fatalf("DeleteShareLink() error = %v", err)
	}
	if _, err := c.SharedProgress(ctx, link.ID); !IsNotFound(err) {
		t.Errorf("deleted link still served: %v", err)
	}
}

func TestProfileEndpoints(t *testing.T) {
	c, _ := signedInClient(t)
	ctx := context.Background()

	name := "Samantha"
	updated, err := c.UpdateProfile(ctx, models.ProfileUpdate{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != name {
		t.Errorf("UpdateProfile() = %+v", updated)
	}
	profile, err := c.Profile(ctx)
	if err != nil || profile.Name != name {
		t.Errorf("Profile() = %+v, %v", profile, err)
	}

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := c.Profile(ctx); !IsUnauthorized(err) {
		t.Errorf("Profile() after sign out error = %v, want 401", err)
	}
}
