package models

// Settings holds client-side preferences persisted in local storage
type Settings struct {
	APIURL          string `json:"api_url"`          // backend base URL, e.g. "http://localhost:5000/api"
	DefaultEmoji    string `json:"default_emoji"`    // emoji used when a new habit omits one
	DefaultCategory string `json:"default_category"` // category used when a new habit omits one
	DefaultColor    string `json:"default_color"`    // hex color used when a new habit omits one
	StatsDays       int    `json:"stats_days"`       // default window for progress stats
}
