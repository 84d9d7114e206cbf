package models

import "time"

// ShareLink is a persisted, externally reachable snapshot configuration.
// Links are created and deleted but never edited.
type ShareLink struct {
	ID            ID        `json:"share_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	IncludeStats  bool      `json:"include_stats"`
	IncludeHabits bool      `json:"include_habits"`
	CreatedAt     time.Time `json:"created_at"`
	URL           string    `json:"shareUrl"`
}

// ShareRequest is the body of POST /share/create
type ShareRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	IncludeStats  bool   `json:"includeStats"`
	IncludeHabits bool   `json:"includeHabits"`
}

// SummaryStats are the headline numbers shown on a share page
type SummaryStats struct {
	TotalHabits      int     `json:"totalHabits"`
	TotalCompletions int     `json:"totalCompletions"`
	LongestStreak    int     `json:"longestStreak"`
	AverageStreak    float64 `json:"averageStreak"`
}

// ShareStats is the preview of what a new share link would expose
type ShareStats struct {
	Stats  SummaryStats `json:"stats"`
	Habits []Habit      `json:"habits"`
}

// SharedProgress is the public view behind a share link
type SharedProgress struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	UserName    string        `json:"userName,omitempty"`
	Stats       *SummaryStats `json:"stats,omitempty"`
	Habits      []Habit       `json:"habits,omitempty"`
}
