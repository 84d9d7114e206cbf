package models

import "github.com/julianstephens/habitual/internal/constants"

// DefaultSettings returns the built-in client preferences.
func DefaultSettings() Settings {
	return Settings{
		APIURL:          constants.DefaultAPIURL,
		DefaultEmoji:    constants.DefaultEmoji,
		DefaultCategory: constants.DefaultCategory,
		DefaultColor:    constants.DefaultColor,
		StatsDays:       constants.DefaultStatsDays,
	}
}

// WithDefaults fills empty fields of s from the built-in defaults.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.APIURL == "" {
		s.APIURL = d.APIURL
	}
	if s.DefaultEmoji == "" {
		s.DefaultEmoji = d.DefaultEmoji
	}
	if s.DefaultCategory == "" {
		s.DefaultCategory = d.DefaultCategory
	}
	if s.DefaultColor == "" {
		s.DefaultColor = d.DefaultColor
	}
	if s.StatsDays <= 0 {
		s.StatsDays = d.StatsDays
	}
	return s
}

// ApplyDefaults fills the optional fields of a habit input from settings.
func (s Settings) ApplyDefaults(in HabitInput) HabitInput {
	s = s.WithDefaults()
	if in.Emoji == "" {
		in.Emoji = s.DefaultEmoji
	}
	if in.Category == "" {
		in.Category = s.DefaultCategory
	}
	if in.Color == "" {
		in.Color = s.DefaultColor
	}
	return in
}
