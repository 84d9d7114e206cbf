package models

import "time"

// Habit is a user-defined recurring action. Streak values are computed by the
// backend and must never be derived locally.
type Habit struct {
	ID            ID         `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Emoji         string     `json:"emoji"`
	Category      string     `json:"category"`
	Color         string     `json:"color"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// HabitInput is the creation payload sent to POST /habits
type HabitInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Category    string `json:"category,omitempty"`
	Color       string `json:"color,omitempty"`
}

// HabitUpdate is a partial update; nil fields are left untouched by the server.
type HabitUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
	Category    *string `json:"category,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u HabitUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Emoji == nil &&
		u.Category == nil && u.Color == nil && u.IsActive == nil
}
