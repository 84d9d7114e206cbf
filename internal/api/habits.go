package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/habitual/internal/models"
)

// ListHabits returns the user's habits; activeOnly restricts to active ones.
func (c *Client) ListHabits(ctx context.Context, activeOnly bool) ([]models.Habit, error) {
	endpoint := "/habits"
	if activeOnly {
		endpoint += "?active=true"
	}
	var habits []models.Habit
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &habits); err != nil {
		return nil, err
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

func (c *Client) CreateHabit(ctx context.Context, in models.HabitInput) (models.Habit, error) {
	var habit models.Habit
	err := c.Do(ctx, http.MethodPost, "/habits", in, &habit)
	return habit, err
}

func (c *Client) UpdateHabit(ctx context.Context, id models.ID, upd models.HabitUpdate) (models.Habit, error) {
	var habit models.Habit
	err := c.Do(ctx, http.MethodPut, "/habits/"+url.PathEscape(id.String()), upd, &habit)
	return habit, err
}

func (c *Client) DeleteHabit(ctx context.Context, id models.ID) error {
	return c.Do(ctx, http.MethodDelete, "/habits/"+url.PathEscape(id.String()), nil, nil)
}

// HabitCategories lists the categories the user has used so far.
func (c *Client) HabitCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := c.Do(ctx, http.MethodGet, "/habits/categories", nil, &categories)
	return categories, err
}
