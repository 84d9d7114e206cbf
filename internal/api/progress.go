package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/habitual/internal/models"
)

// ProgressQuery filters GET /progress. Empty fields are omitted.
type ProgressQuery struct {
	StartDate string
	EndDate   string
	HabitID   models.ID
}

func (q ProgressQuery) encode() string {
	v := url.Values{}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	if !q.HabitID.IsZero() {
		v.Set("habitId", q.HabitID.String())
	}
	return v.Encode()
}

// StatsQuery filters GET /progress/stats.
type StatsQuery struct {
	Days    int
	HabitID models.ID
}

func (q StatsQuery) encode() string {
	v := url.Values{}
	if q.Days > 0 {
		v.Set("days", strconv.Itoa(q.Days))
	}
	if !q.HabitID.IsZero() {
		v.Set("habitId", q.HabitID.String())
	}
	return v.Encode()
}

func withQuery(endpoint, query string) string {
	if query == "" {
		return endpoint
	}
	return endpoint + "?" + query
}

// TodayProgress returns one entry per active habit for the current day.
func (c *Client) TodayProgress(ctx context.Context) ([]models.TodayEntry, error) {
	var entries []models.TodayEntry
	if err := c.Do(ctx, http.MethodGet, "/progress/today", nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.TodayEntry{}
	}
	return entries, nil
}

// ToggleProgress flips (or creates) the record for habitID on date. The
// server decides the resulting completed value.
func (c *Client) ToggleProgress(ctx context.Context, habitID models.ID, date string) (models.ToggleResult, error) {
	var result models.ToggleResult
	err := c.Do(ctx, http.MethodPost, "/progress/toggle", models.ToggleRequest{HabitID: habitID, Date: date}, &result)
	return result, err
}

func (c *Client) DeleteProgress(ctx context.Context, id models.ID) error {
	return c.Do(ctx, http.MethodDelete, "/progress/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) ListProgress(ctx context.Context, q ProgressQuery) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	err := c.Do(ctx, http.MethodGet, withQuery("/progress", q.encode()), nil, &records)
	return records, err
}

func (c *Client) ProgressStats(ctx context.Context, q StatsQuery) (models.ProgressStats, error) {
	var stats models.ProgressStats
	err := c.Do(ctx, http.MethodGet, withQuery("/progress/stats", q.encode()), nil, &stats)
	return stats, err
}

// ProgressCalendar returns the records of one month (month is 1-12).
func (c *Client) ProgressCalendar(ctx context.Context, year, month int, habitID models.ID) ([]models.ProgressRecord, error) {
	endpoint := fmt.Sprintf("/progress/calendar/%d/%d", year, month)
	q := url.Values{}
	if !habitID.IsZero() {
		q.Set("habitId", habitID.String())
	}
	var records []models.ProgressRecord
	err := c.Do(ctx, http.MethodGet, withQuery(endpoint, q.Encode()), nil, &records)
	return records, err
}
