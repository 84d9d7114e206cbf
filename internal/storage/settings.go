package storage

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// SettingsPairs flattens settings into the key/value rows of the settings table.
func SettingsPairs(s models.Settings) [][2]string {
	return [][2]string{
		{constants.SettingAPIURL, s.APIURL},
		{constants.SettingDefaultEmoji, s.DefaultEmoji},
		{constants.SettingDefaultCategory, s.DefaultCategory},
		{constants.SettingDefaultColor, s.DefaultColor},
		{constants.SettingStatsDays, strconv.Itoa(s.StatsDays)},
	}
}

// ScanSettings rebuilds settings from key/value rows. Unknown keys are ignored.
func ScanSettings(rows map[string]string) (models.Settings, error) {
	var s models.Settings
	for key, value := range rows {
		switch key {
		case constants.SettingAPIURL:
			s.APIURL = value
		case constants.SettingDefaultEmoji:
			s.DefaultEmoji = value
		case constants.SettingDefaultCategory:
			s.DefaultCategory = value
		case constants.SettingDefaultColor:
			s.DefaultColor = value
		case constants.SettingStatsDays:
			if value == "" {
				continue
			}
			days, err := strconv.Atoi(value)
			if err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", constants.SettingStatsDays, err)
			}
			s.StatsDays = days
		}
	}
	return s, nil
}
