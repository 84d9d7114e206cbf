package models

// ProgressRecord is the completion status of one habit on one calendar day.
// The backend guarantees at most one record per (habit, date).
type ProgressRecord struct {
	ID        ID     `json:"id"`
	HabitID   ID     `json:"habit_id"`
	Date      string `json:"date"` // YYYY-MM-DD format
	Completed bool   `json:"completed"`
}

// TodayEntry pairs a habit with its progress for the current day. It is
// synthesized by the backend on every request.
type TodayEntry struct {
	Habit      Habit `json:"habit"`
	Completed  bool  `json:"completed"`
	ProgressID ID    `json:"progress_id,omitempty"`
}

// ToggleRequest is the body of POST /progress/toggle
type ToggleRequest struct {
	HabitID ID     `json:"habitId"`
	Date    string `json:"date"`
}

// ToggleResult is the server's verdict after a toggle
type ToggleResult struct {
	Completed bool `json:"completed"`
}

// ProgressStats summarizes completion over a window of days
type ProgressStats struct {
	CompletedDays  int     `json:"completedDays"`
	TotalDays      int     `json:"totalDays"`
	CompletionRate float64 `json:"completionRate"`
	MissedDays     int     `json:"missedDays"`
}

// DayStatus classifies a calendar day from its progress records
type DayStatus string

const (
	DayNone     DayStatus = "none"
	DayMissed   DayStatus = "missed"
	DayPartial  DayStatus = "partial"
	DayComplete DayStatus = "complete"
)

// StatusForDay returns the completion status of day given a month of records.
func StatusForDay(records []ProgressRecord, day string) DayStatus {
	total, completed := 0, 0
	for _, r := range records {
		if r.Date != day {
			continue
		}
		total++
		if r.Completed {
			completed++
		}
	}
	switch {
	case total == 0:
		return DayNone
	case completed == 0:
		return DayMissed
	case completed == total:
		return DayComplete
	default:
		return DayPartial
	}
}
