package constants

const (
	// General Settings
	SettingAPIURL          = "api_url"
	SettingDefaultEmoji    = "default_emoji"
	SettingDefaultCategory = "default_category"
	SettingDefaultColor    = "default_color"
	SettingStatsDays       = "stats_days"

	// Default Settings Values
	DefaultEmoji     = "✅"
	DefaultCategory  = "General"
	DefaultColor     = "#3B82F6"
	DefaultStatsDays = 30
)
